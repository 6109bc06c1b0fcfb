package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	// coll is the "messages" collection
	coll *mongo.Collection

	// clock hands out strictly increasing created_at values
	clock *Clock
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll, clock: NewClock()}
}

// CreateMessage inserts a message owned by ownerID. The id and created_at
// are assigned here; whatever the caller put there is overwritten.
func (m *MessagesStore) CreateMessage(ctx context.Context, ownerID string, p MessagePatch) (*Message, error) {
	msg := &Message{
		ID:        bson.NewObjectID(), // known before the insert, returned to the client
		OwnerID:   ownerID,            // JWT subject of the caller
		Name:      p.Name,
		PhotoURL:  p.PhotoURL,
		Text:      p.Text,
		ImageURL:  p.ImageURL,
		Category:  p.Category,
		CreatedAt: m.clock.Next(), // server time, never the client's
	}
	if _, err := m.coll.InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// UpdateMessage sets the present fields of p on message id.
func (m *MessagesStore) UpdateMessage(ctx context.Context, id bson.ObjectID, p MessagePatch) error {
	// MongoDB rejects an empty $set
	if p.Empty() {
		return nil
	}
	// only the present fields are written; absent ones keep their value
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.D{{Key: "$set", Value: p.setDoc()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMessage reads one message.
func (m *MessagesStore) GetMessage(ctx context.Context, id bson.ObjectID) (*Message, error) {
	var msg Message
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// RecentMessages returns the newest limit messages, oldest first.
func (m *MessagesStore) RecentMessages(ctx context.Context, limit int64) ([]*Message, error) {
	// newest first so the limit keeps the most recent entries
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}). // uses the created_at index
		SetLimit(limit)

	cursor, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	// newest-first from the query, callers render oldest-first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// AppendComment atomically pushes text onto the message's comment thread
// and returns the thread as stored after the push.
func (m *MessagesStore) AppendComment(ctx context.Context, id bson.ObjectID, text string) ([]string, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).    // the thread including this comment
		SetProjection(bson.M{"comments": 1}) // nothing else is needed

	var doc struct {
		Comments []string `bson:"comments"`
	}
	// $push is applied server side, so concurrent comments are all kept
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"comments": text}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.Comments, nil
}

package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TokensStore keeps push device tokens. A token belongs to the last user
// that registered it.
type TokensStore struct {
	coll *mongo.Collection
}

// NewTokensStore returns a TokensStore over coll.
func NewTokensStore(coll *mongo.Collection) *TokensStore {
	return &TokensStore{coll: coll}
}

// SaveToken upserts token for uid.
func (s *TokensStore) SaveToken(ctx context.Context, token, uid string) error {
	doc := PushToken{Token: token, UID: uid, UpdatedAt: time.Now().UTC()}
	// upsert by token: a device moving to another account changes owner
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": token}, doc, options.Replace().SetUpsert(true))
	return err
}

// TokensForUser lists the tokens registered by uid.
func (s *TokensStore) TokensForUser(ctx context.Context, uid string) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"uid": uid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []PushToken
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	// callers only need the token strings
	tokens := make([]string, 0, len(docs))
	for _, d := range docs {
		tokens = append(tokens, d.Token)
	}
	return tokens, nil
}

// Package data provides DB models and stores.
package data

import (
	"context" // cancellation and deadlines from the RPC
	"errors"  // mapping driver errors
	"time"    // created_at / updated_at

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"          // query filters
	"go.mongodb.org/mongo-driver/v2/mongo"         // driver
	"go.mongodb.org/mongo-driver/v2/mongo/options" // sort and projection
)

// UsersStore performs user DB operations.
type UsersStore struct {
	// coll is the "users" collection; the unique email index lives on it
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new user with an already hashed password. Email and
// role are normalized; an empty role becomes "patient".
func (u *UsersStore) CreateUser(ctx context.Context, email, hashedPassword, displayName, photoURL, role string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		Email:       normalize.Email(email), // trimmed, lower-cased
		Password:    hashedPassword,         // from auth.HashPassword
		DisplayName: displayName,
		PhotoURL:    photoURL,
		Role:        normalize.Role(role), // "" becomes "patient"
		CreatedAt:   now,
		UpdatedAt:   now, // same as CreatedAt until the first SetRole
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		// the unique email index rejected a second account
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	// _id is generated by the driver; it becomes the JWT subject
	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

// GetUserByEmail finds a user by email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return u.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetUserByID finds a user by ObjectID.
func (u *UsersStore) GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

func (u *UsersStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	// the full document, password hash included; Login needs it
	user := new(User)
	switch err := u.coll.FindOne(ctx, filter).Decode(user); {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return user, nil
}

// ListUsers returns the whole directory without credentials, ordered by email.
func (u *UsersStore) ListUsers(ctx context.Context) ([]*User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "email", Value: 1}}). // stable order for clients
		SetProjection(bson.M{"password": 0})       // never ship hashes

	cursor, err := u.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	// the directory is small; read it in one go
	var users []*User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole changes a user's role.
func (u *UsersStore) SetRole(ctx context.Context, email, role string) error {
	res, err := u.coll.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{"role": normalize.Role(role), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	// no account with that email
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Package db manages MongoDB connections and collections.
package db

import (
	"context" // connect and ping deadlines
	"fmt"     // wrapped errors
	"time"    // timeouts

	"go.mongodb.org/mongo-driver/v2/bson"           // index key documents
	"go.mongodb.org/mongo-driver/v2/mongo"          // driver, collections, GridFS
	"go.mongodb.org/mongo-driver/v2/mongo/options"  // client, index and bucket options
	"go.mongodb.org/mongo-driver/v2/mongo/readpref" // primary read preference for Ping
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "health_journal"

// MediaBucket is the GridFS bucket holding uploaded images.
const MediaBucket = "media"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the pooled driver connection, safe for concurrent use
	client *mongo.Client

	// db is the journal database; users, messages, fcm_tokens and the
	// media bucket all live in it
	db *mongo.Database
}

// New connects to MongoDB and returns a Client over database dbName.
func New(ctx context.Context, mongoURI, dbName string) (*Client, error) {
	// Parse the URI; give up on unreachable servers after 10 seconds
	opts := options.Client().
		ApplyURI(mongoURI).                 // host, credentials, replica set
		SetConnectTimeout(10 * time.Second) // per-connection dial limit

	// Connect only builds the pool; nothing is dialed yet
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the primary so a bad URI fails here and not on the first request
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		// release the pool we just built
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	// The database is created by MongoDB on first write
	if dbName == "" {
		dbName = DefaultDatabase
	}
	return &Client{client: client, db: client.Database(dbName)}, nil
}

// UsersCollection returns the user directory.
func (c *Client) UsersCollection() *mongo.Collection {
	// email, password hash, profile and role per account
	return c.db.Collection("users")
}

// MessagesCollection returns the journal messages.
func (c *Client) MessagesCollection() *mongo.Collection {
	// one document per journal entry, comments embedded
	return c.db.Collection("messages")
}

// PushTokensCollection returns device tokens keyed by token.
func (c *Client) PushTokensCollection() *mongo.Collection {
	// _id is the device token itself, so re-registering overwrites
	return c.db.Collection("fcm_tokens")
}

// MediaBucket returns the GridFS bucket for uploaded files.
func (c *Client) MediaBucket() *mongo.GridFSBucket {
	// stored as media.files + media.chunks
	return c.db.GridFSBucket(options.GridFSBucket().SetName(MediaBucket))
}

// Drop removes every collection this client owns. Used by tests.
func (c *Client) Drop(ctx context.Context) error {
	for _, coll := range []*mongo.Collection{c.UsersCollection(), c.MessagesCollection(), c.PushTokensCollection()} {
		// dropping a missing collection is not an error
		if err := coll.Drop(ctx); err != nil {
			return err
		}
	}
	// GridFS keeps its own two collections
	return c.MediaBucket().Drop(ctx)
}

// Ping checks that the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	// ctx bounds how long in-flight operations get to finish
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the stores rely on.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// one account per email; role lookups scan by email too
	usersIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := c.UsersCollection().Indexes().CreateOne(ctx, usersIndex); err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	// the feed window reads the newest N by created_at
	messagesIndex := mongo.IndexModel{
		// -1 = descending, newest first
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}
	if _, err := c.MessagesCollection().Indexes().CreateOne(ctx, messagesIndex); err != nil {
		return fmt.Errorf("failed to create message index: %w", err)
	}

	// TokensForUser looks tokens up by owner
	tokensIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "uid", Value: 1}},
	}
	if _, err := c.PushTokensCollection().Indexes().CreateOne(ctx, tokensIndex); err != nil {
		return fmt.Errorf("failed to create push token index: %w", err)
	}

	// CreateOne is idempotent, so this is safe on every start
	return nil
}

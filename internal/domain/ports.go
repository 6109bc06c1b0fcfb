package domain

import (
	"context"
	"iter"
)

// IdentityProvider performs the external sign-in flow.
type IdentityProvider interface {
	Authenticate(ctx context.Context) (*Session, error)
	Revoke()
}

// Directory lists every user record.
type Directory interface {
	ListUsers(ctx context.Context) ([]UserRecord, error)
}

// MessageStore is the realtime record store.
type MessageStore interface {
	Create(ctx context.Context, d Draft) (string, error)
	Update(ctx context.Context, id string, f Fields) error
	Get(ctx context.Context, id string) (*Message, error)
	// Subscribe yields the most recent limit records as Added events, then
	// live upserts, until ctx is done or the feed fails.
	Subscribe(ctx context.Context, limit int) iter.Seq2[Event, error]
	AddComment(ctx context.Context, id, text string) error
}

// MediaStore is the object storage for images.
type MediaStore interface {
	Upload(ctx context.Context, f File, ownerID, messageID string) (string, error)
	Resolve(ctx context.Context, ref string) (string, error)
}

// PushRegistry records device tokens for notifications.
type PushRegistry interface {
	RegisterPushToken(ctx context.Context, token string) error
}

// TokenSource hands out the device's push token. An empty token means
// permission has not been granted yet.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	RequestPermission(ctx context.Context) error
}

package data

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when registering a taken email.
	ErrUserExists = errors.New("user already exists")
)

// User maps to the users collection: the directory plus credentials.
type User struct {
	ID          bson.ObjectID `bson:"_id,omitempty"` // omitted on insert so the driver fills it
	Email       string        `bson:"email"`         // normalized, unique
	Password    string        `bson:"password"`      // bcrypt hash
	DisplayName string        `bson:"display_name"`
	PhotoURL    string        `bson:"photo_url,omitempty"`
	Role        string        `bson:"role"` // "patient" or a staff role
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

// Message maps to the messages collection. Optional fields are pointers so
// an absent field stays absent instead of becoming "".
type Message struct {
	ID        bson.ObjectID `bson:"_id"`
	OwnerID   string        `bson:"owner_id"`
	Name      *string       `bson:"name,omitempty"`
	PhotoURL  *string       `bson:"photo_url,omitempty"`
	Text      *string       `bson:"text,omitempty"`
	ImageURL  *string       `bson:"image_url,omitempty"`
	Category  *string       `bson:"category,omitempty"`
	CreatedAt time.Time     `bson:"created_at"`
	Comments  []string      `bson:"comments,omitempty"`
}

// MessagePatch lists the client-writable fields of a message.
type MessagePatch struct {
	Name     *string
	PhotoURL *string
	Text     *string
	ImageURL *string
	Category *string
}

// Empty reports whether the patch changes nothing.
func (p MessagePatch) Empty() bool {
	return p.Name == nil && p.PhotoURL == nil && p.Text == nil && p.ImageURL == nil && p.Category == nil
}

func (p MessagePatch) setDoc() bson.D {
	var set bson.D
	add := func(key string, v *string) {
		if v != nil {
			set = append(set, bson.E{Key: key, Value: *v})
		}
	}
	add("name", p.Name)
	add("photo_url", p.PhotoURL)
	add("text", p.Text)
	add("image_url", p.ImageURL)
	add("category", p.Category)
	return set
}

// PushToken maps to the fcm_tokens collection, keyed by the token itself.
type PushToken struct {
	Token     string    `bson:"_id"` // the device token
	UID       string    `bson:"uid"` // current owner
	UpdatedAt time.Time `bson:"updated_at"`
}

// MediaFile describes a GridFS file in the media bucket.
type MediaFile struct {
	ID          bson.ObjectID
	FullPath    string
	ContentType string
	Size        int64
	OwnerID     string
	MessageID   string
	UploadedAt  time.Time
}

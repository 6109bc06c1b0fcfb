// Package domain holds the journal's client-side model and the ports the
// controller talks to. It has no dependencies on transport or storage.
package domain

import "time"

const (
	// DefaultFeedLimit is how many of the most recent messages a surface shows.
	DefaultFeedLimit = 12

	// LoadingImageURL is shown while an image is being uploaded or resolved.
	LoadingImageURL = "https://www.google.com/images/spin-32.gif"

	// ProfilePlaceholderURL stands in for users without a profile picture.
	ProfilePlaceholderURL = "/images/profile_placeholder.png"

	// MediaRefPrefix marks a store-relative reference to an uploaded file.
	MediaRefPrefix = "media://"
)

// Body is either a TextBody or an ImageBody.
type Body interface {
	isBody()
}

// TextBody is a plain text message.
type TextBody struct {
	Content string
}

// ImageBody points at an image, either a URL or a store reference.
type ImageBody struct {
	URI string
}

func (TextBody) isBody()  {}
func (ImageBody) isBody() {}

// Message is a journal entry as stored.
type Message struct {
	ID        string
	Name      string
	PhotoURL  string
	Body      Body
	Category  string
	CreatedAt time.Time
	Comments  []string
}

// Fields returns every field of m as present.
func (m *Message) Fields() Fields {
	f := Fields{
		Name:     Ptr(m.Name),
		Category: Ptr(m.Category),
		Comments: m.Comments,
	}
	if m.PhotoURL != "" {
		f.PhotoURL = Ptr(m.PhotoURL)
	}
	if !m.CreatedAt.IsZero() {
		f.CreatedAt = Ptr(m.CreatedAt)
	}
	switch b := m.Body.(type) {
	case TextBody:
		f.Text = Ptr(b.Content)
	case ImageBody:
		f.ImageURI = Ptr(b.URI)
	}
	return f
}

// Fields is a partial message; nil means absent.
type Fields struct {
	Name      *string
	PhotoURL  *string
	Text      *string
	ImageURI  *string
	Category  *string
	CreatedAt *time.Time
	Comments  []string
}

// Body returns the body carried by f, or nil if it carries none. A non-empty
// text wins over an image.
func (f Fields) Body() Body {
	if f.Text != nil && *f.Text != "" {
		return TextBody{Content: *f.Text}
	}
	if f.ImageURI != nil && *f.ImageURI != "" {
		return ImageBody{URI: *f.ImageURI}
	}
	return nil
}

// Draft is a message before the store assigns its id and timestamp.
type Draft struct {
	Name     string
	PhotoURL string
	Body     Body
	Category string
}

// Fields converts the draft to its create payload.
func (d Draft) Fields() Fields {
	m := Message{Name: d.Name, PhotoURL: d.PhotoURL, Body: d.Body, Category: d.Category}
	return m.Fields()
}

// EventKind tells whether an upsert created or changed a record.
type EventKind int

const (
	Added EventKind = iota
	Changed
)

func (k EventKind) String() string {
	if k == Changed {
		return "changed"
	}
	return "added"
}

// Event is one upsert notification from the live feed.
type Event struct {
	ID     string
	Kind   EventKind
	Fields Fields
}

// File is a user-selected upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Package v1 holds the wire types and service definition of the
// journal.v1.JournalService gRPC API. Messages are plain Go structs carried
// by the JSON codec registered in codec.go; getters mirror the shape of
// generated code so callers can use nil-safe accessors.
package v1

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// Update event kinds carried by UpsertEvent.Kind.
const (
	KindAdded   = "added"
	KindChanged = "changed"
)

// RegisterRequest creates a new account. Role defaults to "patient".
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoUrl    string `json:"photo_url,omitempty"`
	Role        string `json:"role,omitempty"`
}

func (x *RegisterRequest) GetEmail() string {
	if x == nil {
		return ""
	}
	return x.Email
}

func (x *RegisterRequest) GetPassword() string {
	if x == nil {
		return ""
	}
	return x.Password
}

func (x *RegisterRequest) GetDisplayName() string {
	if x == nil {
		return ""
	}
	return x.DisplayName
}

func (x *RegisterRequest) GetPhotoUrl() string {
	if x == nil {
		return ""
	}
	return x.PhotoUrl
}

func (x *RegisterRequest) GetRole() string {
	if x == nil {
		return ""
	}
	return x.Role
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (x *LoginRequest) GetEmail() string {
	if x == nil {
		return ""
	}
	return x.Email
}

func (x *LoginRequest) GetPassword() string {
	if x == nil {
		return ""
	}
	return x.Password
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Token       string                 `json:"token"`
	UserId      string                 `json:"user_id"`
	Email       string                 `json:"email"`
	DisplayName string                 `json:"display_name,omitempty"`
	PhotoUrl    string                 `json:"photo_url,omitempty"`
	ExpiresAt   *timestamppb.Timestamp `json:"expires_at,omitempty"`
}

func (x *AuthResponse) GetToken() string {
	if x == nil {
		return ""
	}
	return x.Token
}

func (x *AuthResponse) GetUserId() string {
	if x == nil {
		return ""
	}
	return x.UserId
}

func (x *AuthResponse) GetExpiresAt() *timestamppb.Timestamp {
	if x == nil {
		return nil
	}
	return x.ExpiresAt
}

// UserRecord is one entry of the user directory.
type UserRecord struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListUsersResponse carries the whole directory.
type ListUsersResponse struct {
	Users []*UserRecord `json:"users"`
}

func (x *ListUsersResponse) GetUsers() []*UserRecord {
	if x == nil {
		return nil
	}
	return x.Users
}

// MessageFields is a partial message record. A nil field is absent: on
// create it is not stored, on update it is left untouched, on an event it
// did not change.
type MessageFields struct {
	Name      *string                `json:"name,omitempty"`
	PhotoUrl  *string                `json:"photo_url,omitempty"`
	Text      *string                `json:"text,omitempty"`
	ImageUrl  *string                `json:"image_url,omitempty"`
	Category  *string                `json:"category,omitempty"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
	Comments  []string               `json:"comments,omitempty"`
}

// CreatedTime returns the creation timestamp, or the zero time when absent.
func (x *MessageFields) CreatedTime() time.Time {
	if x == nil || x.CreatedAt == nil {
		return time.Time{}
	}
	return x.CreatedAt.AsTime()
}

// CreateMessageRequest pushes a new message. CreatedAt is ignored; the
// server stamps it.
type CreateMessageRequest struct {
	Message *MessageFields `json:"message"`
}

func (x *CreateMessageRequest) GetMessage() *MessageFields {
	if x == nil {
		return nil
	}
	return x.Message
}

// CreateMessageResponse returns the store-assigned key.
type CreateMessageResponse struct {
	Id        string                 `json:"id"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
}

func (x *CreateMessageResponse) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

// UpdateMessageRequest patches the present fields of a message.
type UpdateMessageRequest struct {
	Id     string         `json:"id"`
	Fields *MessageFields `json:"fields"`
}

func (x *UpdateMessageRequest) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

func (x *UpdateMessageRequest) GetFields() *MessageFields {
	if x == nil {
		return nil
	}
	return x.Fields
}

// GetMessageRequest is a one-shot read by key.
type GetMessageRequest struct {
	Id string `json:"id"`
}

func (x *GetMessageRequest) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

// Message is a full message record.
type Message struct {
	Id     string         `json:"id"`
	Fields *MessageFields `json:"fields"`
}

func (x *Message) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

func (x *Message) GetFields() *MessageFields {
	if x == nil {
		return nil
	}
	return x.Fields
}

// SubscribeRequest opens a live feed over the most recent Limit messages.
type SubscribeRequest struct {
	Limit int32 `json:"limit"`
}

func (x *SubscribeRequest) GetLimit() int32 {
	if x == nil {
		return 0
	}
	return x.Limit
}

// UpsertEvent means "this record was created or changed".
type UpsertEvent struct {
	Id     string         `json:"id"`
	Kind   string         `json:"kind"`
	Fields *MessageFields `json:"fields"`
}

func (x *UpsertEvent) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

func (x *UpsertEvent) GetKind() string {
	if x == nil {
		return ""
	}
	return x.Kind
}

func (x *UpsertEvent) GetFields() *MessageFields {
	if x == nil {
		return nil
	}
	return x.Fields
}

// AddCommentRequest appends one comment to a message's thread.
type AddCommentRequest struct {
	MessageId string `json:"message_id"`
	Text      string `json:"text"`
}

func (x *AddCommentRequest) GetMessageId() string {
	if x == nil {
		return ""
	}
	return x.MessageId
}

func (x *AddCommentRequest) GetText() string {
	if x == nil {
		return ""
	}
	return x.Text
}

// UploadMediaRequest carries one file for a message.
type UploadMediaRequest struct {
	MessageId   string `json:"message_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func (x *UploadMediaRequest) GetMessageId() string {
	if x == nil {
		return ""
	}
	return x.MessageId
}

func (x *UploadMediaRequest) GetFileName() string {
	if x == nil {
		return ""
	}
	return x.FileName
}

func (x *UploadMediaRequest) GetContentType() string {
	if x == nil {
		return ""
	}
	return x.ContentType
}

func (x *UploadMediaRequest) GetData() []byte {
	if x == nil {
		return nil
	}
	return x.Data
}

// UploadMediaResponse returns the store reference of the uploaded file.
type UploadMediaResponse struct {
	Ref      string `json:"ref"`
	FullPath string `json:"full_path"`
}

func (x *UploadMediaResponse) GetRef() string {
	if x == nil {
		return ""
	}
	return x.Ref
}

// GetMediaMetadataRequest resolves a store reference.
type GetMediaMetadataRequest struct {
	Ref string `json:"ref"`
}

func (x *GetMediaMetadataRequest) GetRef() string {
	if x == nil {
		return ""
	}
	return x.Ref
}

// MediaMetadata describes an uploaded file.
type MediaMetadata struct {
	Ref          string   `json:"ref"`
	FullPath     string   `json:"full_path"`
	ContentType  string   `json:"content_type"`
	Size         int64    `json:"size"`
	DownloadUrls []string `json:"download_urls"`
}

func (x *MediaMetadata) GetDownloadUrls() []string {
	if x == nil {
		return nil
	}
	return x.DownloadUrls
}

// RegisterPushTokenRequest stores a device token for the caller.
type RegisterPushTokenRequest struct {
	Token string `json:"token"`
}

func (x *RegisterPushTokenRequest) GetToken() string {
	if x == nil {
		return ""
	}
	return x.Token
}

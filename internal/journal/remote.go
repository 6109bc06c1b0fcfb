// Package journal adapts the journal gRPC service to the client's domain
// ports.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Remote talks to a journal server. It implements domain.Directory,
// domain.MessageStore, domain.MediaStore and domain.PushRegistry; calls
// carry the token of the session last passed to SetSession.
type Remote struct {
	client v1.JournalServiceClient

	mu    sync.RWMutex
	token string
}

// NewRemote wraps an existing client.
func NewRemote(client v1.JournalServiceClient) *Remote {
	return &Remote{client: client}
}

// Dial connects to addr. With useTLS the system roots verify the server.
func Dial(addr string, useTLS bool) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if useTLS {
		creds = credentials.NewClientTLSFromCert(nil, "")
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

// SetSession switches the bearer token; nil signs the adapter out.
func (r *Remote) SetSession(s *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s == nil {
		r.token = ""
		return
	}
	r.token = s.Token
}

func (r *Remote) authed(ctx context.Context) (context.Context, error) {
	r.mu.RLock()
	token := r.token
	r.mu.RUnlock()
	if token == "" {
		return nil, domain.ErrNotSignedIn
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token), nil
}

// ListUsers implements domain.Directory.
func (r *Remote) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	ctx, err := r.authed(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.ListUsers(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.UserRecord, 0, len(resp.GetUsers()))
	for _, u := range resp.GetUsers() {
		out = append(out, domain.UserRecord{Email: u.Email, Role: domain.Role(u.Role)})
	}
	return out, nil
}

// Create pushes a new message and returns its id.
func (r *Remote) Create(ctx context.Context, d domain.Draft) (string, error) {
	ctx, err := r.authed(ctx)
	if err != nil {
		return "", err
	}
	resp, err := r.client.CreateMessage(ctx, &v1.CreateMessageRequest{Message: toWire(d.Fields())})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	return resp.GetId(), nil
}

// Update sets the present fields of f on message id.
func (r *Remote) Update(ctx context.Context, id string, f domain.Fields) error {
	ctx, err := r.authed(ctx)
	if err != nil {
		return err
	}
	if _, err := r.client.UpdateMessage(ctx, &v1.UpdateMessageRequest{Id: id, Fields: toWire(f)}); err != nil {
		return fmt.Errorf("update message %s: %w", id, err)
	}
	return nil
}

// Get reads message id once.
func (r *Remote) Get(ctx context.Context, id string) (*domain.Message, error) {
	ctx, err := r.authed(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.GetMessage(ctx, &v1.GetMessageRequest{Id: id})
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	f := fromWire(resp.GetFields())
	m := &domain.Message{ID: resp.GetId(), Body: f.Body(), Comments: f.Comments}
	if f.Name != nil {
		m.Name = *f.Name
	}
	if f.PhotoURL != nil {
		m.PhotoURL = *f.PhotoURL
	}
	if f.Category != nil {
		m.Category = *f.Category
	}
	if f.CreatedAt != nil {
		m.CreatedAt = *f.CreatedAt
	}
	return m, nil
}

// Subscribe opens the live feed. The returned sequence is lazy: the stream
// is opened on the first iteration and closed when iteration stops.
func (r *Remote) Subscribe(ctx context.Context, limit int) iter.Seq2[domain.Event, error] {
	return func(yield func(domain.Event, error) bool) {
		ctx, err := r.authed(ctx)
		if err != nil {
			yield(domain.Event{}, err)
			return
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream, err := r.client.Subscribe(ctx, &v1.SubscribeRequest{Limit: int32(limit)})
		if err != nil {
			yield(domain.Event{}, fmt.Errorf("subscribe: %w", err))
			return
		}
		for {
			ev, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					yield(domain.Event{}, fmt.Errorf("feed: %w", err))
				}
				return
			}
			if !yield(fromWireEvent(ev), nil) {
				return
			}
		}
	}
}

// AddComment appends text to the thread of message id.
func (r *Remote) AddComment(ctx context.Context, id, text string) error {
	ctx, err := r.authed(ctx)
	if err != nil {
		return err
	}
	if _, err := r.client.AddComment(ctx, &v1.AddCommentRequest{MessageId: id, Text: text}); err != nil {
		return fmt.Errorf("add comment to %s: %w", id, err)
	}
	return nil
}

// Upload stores an image for message messageID and returns its reference.
// Non-images are rejected before any call is made.
func (r *Remote) Upload(ctx context.Context, f domain.File, ownerID, messageID string) (string, error) {
	contentType, ok := domain.ImageType(f)
	if !ok {
		return "", domain.ErrNotImage
	}
	ctx, err := r.authed(ctx)
	if err != nil {
		return "", err
	}
	resp, err := r.client.UploadMedia(ctx, &v1.UploadMediaRequest{
		MessageId:   messageID,
		FileName:    f.Name,
		ContentType: contentType,
		Data:        f.Data,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s for %s/%s: %w", f.Name, ownerID, messageID, err)
	}
	return resp.GetRef(), nil
}

// Resolve turns a media reference into a download URL. Anything that is not
// a reference is already a URL and is returned as is.
func (r *Remote) Resolve(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, domain.MediaRefPrefix) {
		return ref, nil
	}
	ctx, err := r.authed(ctx)
	if err != nil {
		return "", err
	}
	meta, err := r.client.GetMediaMetadata(ctx, &v1.GetMediaMetadataRequest{Ref: ref})
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref, err)
	}
	urls := meta.GetDownloadUrls()
	if len(urls) == 0 {
		return "", fmt.Errorf("resolve %s: no download url", ref)
	}
	return urls[0], nil
}

// RegisterPushToken implements domain.PushRegistry.
func (r *Remote) RegisterPushToken(ctx context.Context, token string) error {
	ctx, err := r.authed(ctx)
	if err != nil {
		return err
	}
	if _, err := r.client.RegisterPushToken(ctx, &v1.RegisterPushTokenRequest{Token: token}); err != nil {
		return fmt.Errorf("register push token: %w", err)
	}
	return nil
}

func toWire(f domain.Fields) *v1.MessageFields {
	w := &v1.MessageFields{
		Name:     f.Name,
		PhotoUrl: f.PhotoURL,
		Text:     f.Text,
		ImageUrl: f.ImageURI,
		Category: f.Category,
		Comments: f.Comments,
	}
	if f.CreatedAt != nil {
		w.CreatedAt = timestamppb.New(*f.CreatedAt)
	}
	return w
}

func fromWire(w *v1.MessageFields) domain.Fields {
	if w == nil {
		return domain.Fields{}
	}
	f := domain.Fields{
		Name:     w.Name,
		PhotoURL: w.PhotoUrl,
		Text:     w.Text,
		ImageURI: w.ImageUrl,
		Category: w.Category,
		Comments: w.Comments,
	}
	if w.CreatedAt != nil {
		t := w.CreatedAt.AsTime()
		f.CreatedAt = &t
	}
	return f
}

func fromWireEvent(ev *v1.UpsertEvent) domain.Event {
	kind := domain.Added
	if ev.GetKind() == v1.KindChanged {
		kind = domain.Changed
	}
	return domain.Event{ID: ev.GetId(), Kind: kind, Fields: fromWire(ev.GetFields())}
}

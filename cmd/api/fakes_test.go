package main

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/data"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/normalize"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// fakeUsers is an in-memory userStore.
type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*data.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]*data.User{}} }

func (f *fakeUsers) CreateUser(ctx context.Context, email, hashedPassword, displayName, photoURL, role string) (*data.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = normalize.Email(email)
	if _, ok := f.users[email]; ok {
		return nil, data.ErrUserExists
	}
	u := &data.User{
		ID:          bson.NewObjectID(),
		Email:       email,
		Password:    hashedPassword,
		DisplayName: displayName,
		PhotoURL:    photoURL,
		Role:        normalize.Role(role),
	}
	f.users[email] = u
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (*data.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[normalize.Email(email)]; ok {
		return u, nil
	}
	return nil, data.ErrNotFound
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id bson.ObjectID) (*data.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, data.ErrNotFound
}

func (f *fakeUsers) ListUsers(ctx context.Context) ([]*data.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*data.User, 0, len(f.users))
	for _, u := range f.users {
		c := *u
		c.Password = ""
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// fakeMsgs is an in-memory messageStore.
type fakeMsgs struct {
	mu    sync.Mutex
	clock *data.Clock
	order []bson.ObjectID
	byID  map[bson.ObjectID]*data.Message
}

func newFakeMsgs() *fakeMsgs {
	return &fakeMsgs{clock: data.NewClock(), byID: map[bson.ObjectID]*data.Message{}}
}

func (f *fakeMsgs) CreateMessage(ctx context.Context, ownerID string, p data.MessagePatch) (*data.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &data.Message{
		ID:        bson.NewObjectID(),
		OwnerID:   ownerID,
		Name:      p.Name,
		PhotoURL:  p.PhotoURL,
		Text:      p.Text,
		ImageURL:  p.ImageURL,
		Category:  p.Category,
		CreatedAt: f.clock.Next(),
	}
	f.byID[m.ID] = m
	f.order = append(f.order, m.ID)
	c := *m
	return &c, nil
}

func (f *fakeMsgs) UpdateMessage(ctx context.Context, id bson.ObjectID, p data.MessagePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return data.ErrNotFound
	}
	set := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	set(&m.Name, p.Name)
	set(&m.PhotoURL, p.PhotoURL)
	set(&m.Text, p.Text)
	set(&m.ImageURL, p.ImageURL)
	set(&m.Category, p.Category)
	return nil
}

func (f *fakeMsgs) GetMessage(ctx context.Context, id bson.ObjectID) (*data.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *m
	c.Comments = append([]string(nil), m.Comments...)
	return &c, nil
}

func (f *fakeMsgs) RecentMessages(ctx context.Context, limit int64) ([]*data.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := len(f.order) - int(limit)
	if start < 0 {
		start = 0
	}
	var out []*data.Message
	for _, id := range f.order[start:] {
		c := *f.byID[id]
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeMsgs) AppendComment(ctx context.Context, id bson.ObjectID, text string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	m.Comments = append(m.Comments, text)
	return append([]string(nil), m.Comments...), nil
}

// fakeMedia is an in-memory mediaStore.
type fakeMedia struct {
	mu    sync.Mutex
	files map[bson.ObjectID]*data.MediaFile
	blobs map[bson.ObjectID][]byte
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{files: map[bson.ObjectID]*data.MediaFile{}, blobs: map[bson.ObjectID][]byte{}}
}

func (f *fakeMedia) Upload(ctx context.Context, ownerID, messageID, fileName, contentType string, r io.Reader) (*data.MediaFile, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	mf := &data.MediaFile{
		ID:          bson.NewObjectID(),
		FullPath:    data.MediaPath(ownerID, messageID, fileName),
		ContentType: contentType,
		Size:        int64(len(b)),
		OwnerID:     ownerID,
		MessageID:   messageID,
		UploadedAt:  time.Now(),
	}
	f.files[mf.ID] = mf
	f.blobs[mf.ID] = b
	return mf, nil
}

func (f *fakeMedia) Stat(ctx context.Context, id bson.ObjectID) (*data.MediaFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mf, ok := f.files[id]; ok {
		return mf, nil
	}
	return nil, data.ErrNotFound
}

func (f *fakeMedia) Download(ctx context.Context, id bson.ObjectID, w io.Writer) (int64, error) {
	f.mu.Lock()
	b, ok := f.blobs[id]
	f.mu.Unlock()
	if !ok {
		return 0, data.ErrNotFound
	}
	return io.Copy(w, bytes.NewReader(b))
}

// fakeTokens is an in-memory tokenStore.
type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (f *fakeTokens) SaveToken(ctx context.Context, token, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokens == nil {
		f.tokens = map[string]string{}
	}
	f.tokens[token] = uid
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

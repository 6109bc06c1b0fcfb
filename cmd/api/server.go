package main

import (
	"context"
	"io"
	"time"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/auth"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/data"
	"go.mongodb.org/mongo-driver/v2/bson"
	"google.golang.org/grpc"
)

// userStore is the subset of data.UsersStore the handlers use.
type userStore interface {
	CreateUser(ctx context.Context, email, hashedPassword, displayName, photoURL, role string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
	GetUserByID(ctx context.Context, id bson.ObjectID) (*data.User, error)
	ListUsers(ctx context.Context) ([]*data.User, error)
}

// messageStore is the subset of data.MessagesStore the handlers use.
type messageStore interface {
	CreateMessage(ctx context.Context, ownerID string, p data.MessagePatch) (*data.Message, error)
	UpdateMessage(ctx context.Context, id bson.ObjectID, p data.MessagePatch) error
	GetMessage(ctx context.Context, id bson.ObjectID) (*data.Message, error)
	RecentMessages(ctx context.Context, limit int64) ([]*data.Message, error)
	AppendComment(ctx context.Context, id bson.ObjectID, text string) ([]string, error)
}

type mediaStore interface {
	Upload(ctx context.Context, ownerID, messageID, fileName, contentType string, r io.Reader) (*data.MediaFile, error)
	Stat(ctx context.Context, id bson.ObjectID) (*data.MediaFile, error)
	Download(ctx context.Context, id bson.ObjectID, w io.Writer) (int64, error)
}

type tokenStore interface {
	SaveToken(ctx context.Context, token, uid string) error
}

// Server implements the journal service and contains references to stores and auth logic.
type Server struct {
	v1.UnimplementedJournalServiceServer

	users  userStore
	msgs   messageStore
	media  mediaStore
	tokens tokenStore
	auth   *auth.JWTManager
	hub    *FeedHub

	publicURL       string
	maxUploadBytes  int
	allowRoleSignup bool
	mediaURLTTL     time.Duration
}

// serverOptions are the tunables of a Server.
type serverOptions struct {
	publicURL       string
	maxUploadBytes  int
	allowRoleSignup bool
	// mediaURLTTL bounds how long a signed download URL stays valid.
	mediaURLTTL time.Duration
}

// newServer returns a ready-to-use Server wired with stores and auth manager.
func newServer(users userStore, msgs messageStore, media mediaStore, tokens tokenStore, authMgr *auth.JWTManager, hub *FeedHub, opts serverOptions) *Server {
	if opts.maxUploadBytes <= 0 {
		opts.maxUploadBytes = 8 << 20
	}
	if opts.mediaURLTTL <= 0 {
		opts.mediaURLTTL = time.Hour
	}
	return &Server{
		users:           users,
		msgs:            msgs,
		media:           media,
		tokens:          tokens,
		auth:            authMgr,
		hub:             hub,
		publicURL:       opts.publicURL,
		maxUploadBytes:  opts.maxUploadBytes,
		allowRoleSignup: opts.allowRoleSignup,
		mediaURLTTL:     opts.mediaURLTTL,
	}
}

// registerService registers the JournalService on the given gRPC server.
func registerService(s *grpc.Server, srv *Server) {
	v1.RegisterJournalServiceServer(s, srv)
}

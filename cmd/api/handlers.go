package main

import (
	"bytes"
	"context"
	"errors"
	"strings"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/auth"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/data"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/normalize"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const maxFeedLimit = 100

// Register handles user registration: hashes password, stores user, returns JWT token
func (s *Server) Register(ctx context.Context, req *v1.RegisterRequest) (*v1.AuthResponse, error) {
	email := normalize.Email(req.GetEmail())
	if email == "" || req.GetPassword() == "" {
		return nil, status.Errorf(codes.InvalidArgument, "email and password are required")
	}
	role := normalize.Role(req.GetRole())
	if domain.Role(role).IsStaff() && !s.allowRoleSignup {
		return nil, status.Errorf(codes.PermissionDenied, "role %q cannot be self-assigned", role)
	}

	hashed, err := auth.HashPassword(req.GetPassword())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to hash password: %v", err)
	}

	user, err := s.users.CreateUser(ctx, email, hashed, req.GetDisplayName(), req.GetPhotoUrl(), role)
	if err != nil {
		if errors.Is(err, data.ErrUserExists) {
			return nil, status.Errorf(codes.AlreadyExists, "user already exists")
		}
		log.Error().Err(err).Str("email", email).Msg("create user failed")
		return nil, status.Errorf(codes.Internal, "failed to create user")
	}
	return s.authResponse(user)
}

// Login authenticates a user and returns a JWT token
func (s *Server) Login(ctx context.Context, req *v1.LoginRequest) (*v1.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.GetEmail())
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, status.Errorf(codes.NotFound, "user not found")
		}
		return nil, status.Errorf(codes.Internal, "failed to read user: %v", err)
	}

	if err := auth.CheckPassword(user.Password, req.GetPassword()); err != nil {
		return nil, status.Errorf(codes.PermissionDenied, "invalid credentials")
	}
	return s.authResponse(user)
}

func (s *Server) authResponse(user *data.User) (*v1.AuthResponse, error) {
	token, expiresAt, err := s.auth.GenerateToken(user.ID, user.Email, user.DisplayName, user.PhotoURL)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to generate token: %v", err)
	}
	return &v1.AuthResponse{
		Token:       token,
		UserId:      user.ID.Hex(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoUrl:    user.PhotoURL,
		ExpiresAt:   timestamppb.New(expiresAt),
	}, nil
}

// ListUsers returns the user directory: emails and roles only.
func (s *Server) ListUsers(ctx context.Context, _ *emptypb.Empty) (*v1.ListUsersResponse, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list users: %v", err)
	}
	resp := &v1.ListUsersResponse{Users: make([]*v1.UserRecord, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, &v1.UserRecord{Email: u.Email, Role: u.Role})
	}
	return resp, nil
}

// CreateMessage stores a new message owned by the caller and announces it
// to the feed.
func (s *Server) CreateMessage(ctx context.Context, req *v1.CreateMessageRequest) (*v1.CreateMessageResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	patch := patchFromFields(req.GetMessage())
	if patch.Empty() {
		return nil, status.Errorf(codes.InvalidArgument, "message has no fields")
	}

	saved, err := s.msgs.CreateMessage(ctx, claims.UserID, patch)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to save message: %v", err)
	}
	s.hub.Publish(messageEvent(v1.KindAdded, saved))

	return &v1.CreateMessageResponse{
		Id:        saved.ID.Hex(),
		CreatedAt: timestamppb.New(saved.CreatedAt),
	}, nil
}

// UpdateMessage patches the present fields of one of the caller's messages.
func (s *Server) UpdateMessage(ctx context.Context, req *v1.UpdateMessageRequest) (*emptypb.Empty, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(req.GetId())
	if err != nil {
		return nil, err
	}
	patch := patchFromFields(req.GetFields())
	if patch.Empty() {
		return &emptypb.Empty{}, nil
	}

	current, err := s.msgs.GetMessage(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to read message")
	}
	if current.OwnerID != claims.UserID {
		return nil, status.Errorf(codes.PermissionDenied, "message belongs to another user")
	}

	if err := s.msgs.UpdateMessage(ctx, id, patch); err != nil {
		return nil, storeError(err, "failed to update message")
	}
	s.hub.Publish(&v1.UpsertEvent{Id: req.GetId(), Kind: v1.KindChanged, Fields: fieldsFromPatch(patch)})
	return &emptypb.Empty{}, nil
}

// GetMessage is a one-shot read by id.
func (s *Server) GetMessage(ctx context.Context, req *v1.GetMessageRequest) (*v1.Message, error) {
	id, err := parseID(req.GetId())
	if err != nil {
		return nil, err
	}
	m, err := s.msgs.GetMessage(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to read message")
	}
	return &v1.Message{Id: m.ID.Hex(), Fields: fieldsFromMessage(m)}, nil
}

// Subscribe streams the most recent messages as added events, then live
// upserts for the subscriber's window, until the client goes away.
func (s *Server) Subscribe(req *v1.SubscribeRequest, stream v1.JournalService_SubscribeServer) error {
	ctx := stream.Context()
	limit := int(req.GetLimit())
	if limit == 0 {
		limit = domain.DefaultFeedLimit
	}
	if limit < 1 || limit > maxFeedLimit {
		return status.Errorf(codes.InvalidArgument, "limit must be between 1 and %d", maxFeedLimit)
	}

	// register before reading so nothing written in between is missed
	sub := s.hub.Register(limit)
	defer s.hub.Unregister(sub.ID())

	recent, err := s.msgs.RecentMessages(ctx, int64(limit))
	if err != nil {
		return status.Errorf(codes.Internal, "failed to read recent messages: %v", err)
	}
	ids := make([]string, 0, len(recent))
	for _, m := range recent {
		if err := stream.Send(messageEvent(v1.KindAdded, m)); err != nil {
			return err
		}
		ids = append(ids, m.ID.Hex())
	}
	sub.Seed(ids)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Dropped():
			return status.Errorf(codes.ResourceExhausted, "subscriber fell behind")
		case ev := <-sub.Events():
			if err := stream.Send(ev); err != nil {
				return err
			}
		}
	}
}

// AddComment appends to a message's comment thread. Staff only.
func (s *Server) AddComment(ctx context.Context, req *v1.AddCommentRequest) (*emptypb.Empty, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(req.GetMessageId())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.GetText()) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "comment is empty")
	}
	if err := s.requireStaff(ctx, claims); err != nil {
		return nil, err
	}

	comments, err := s.msgs.AppendComment(ctx, id, req.GetText())
	if err != nil {
		return nil, storeError(err, "failed to add comment")
	}
	s.hub.Publish(&v1.UpsertEvent{Id: req.GetMessageId(), Kind: v1.KindChanged, Fields: &v1.MessageFields{Comments: comments}})
	return &emptypb.Empty{}, nil
}

func (s *Server) requireStaff(ctx context.Context, claims *auth.Claims) error {
	uid, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return status.Errorf(codes.Unauthenticated, "invalid user id in token")
	}
	user, err := s.users.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return status.Errorf(codes.PermissionDenied, "unknown user")
		}
		return status.Errorf(codes.Internal, "failed to read user: %v", err)
	}
	if !domain.Role(user.Role).IsStaff() {
		return status.Errorf(codes.PermissionDenied, "only staff can comment")
	}
	return nil
}

// UploadMedia stores an image under <uid>/<message id>/<file name>.
func (s *Server) UploadMedia(ctx context.Context, req *v1.UploadMediaRequest) (*v1.UploadMediaResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.GetMessageId() == "" {
		return nil, status.Errorf(codes.InvalidArgument, "message id is required")
	}
	if len(req.GetData()) == 0 {
		return nil, status.Errorf(codes.InvalidArgument, "file is empty")
	}
	if len(req.GetData()) > s.maxUploadBytes {
		return nil, status.Errorf(codes.InvalidArgument, "file exceeds %d bytes", s.maxUploadBytes)
	}
	contentType, ok := domain.ImageType(domain.File{Name: req.GetFileName(), ContentType: req.GetContentType(), Data: req.GetData()})
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "file is not an image")
	}

	f, err := s.media.Upload(ctx, claims.UserID, req.GetMessageId(), req.GetFileName(), contentType, bytes.NewReader(req.GetData()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to store file: %v", err)
	}
	uploadedBytes.Add(float64(f.Size))
	return &v1.UploadMediaResponse{Ref: data.MediaRef(f.ID), FullPath: f.FullPath}, nil
}

// GetMediaMetadata resolves a media reference to its metadata and download URL.
func (s *Server) GetMediaMetadata(ctx context.Context, req *v1.GetMediaMetadataRequest) (*v1.MediaMetadata, error) {
	id, err := data.ParseMediaRef(req.GetRef())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	f, err := s.media.Stat(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to read file metadata")
	}
	// the URL ends up in an img src, so it carries its own credential
	token, _, err := s.auth.SignMedia(f.ID.Hex(), s.mediaURLTTL)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to sign download url: %v", err)
	}
	return &v1.MediaMetadata{
		Ref:          req.GetRef(),
		FullPath:     f.FullPath,
		ContentType:  f.ContentType,
		Size:         f.Size,
		DownloadUrls: []string{mediaURL(s.publicURL, f.ID.Hex(), token)},
	}, nil
}

// RegisterPushToken records the caller's device token.
func (s *Server) RegisterPushToken(ctx context.Context, req *v1.RegisterPushTokenRequest) (*emptypb.Empty, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	token := strings.TrimSpace(req.GetToken())
	if token == "" {
		return nil, status.Errorf(codes.InvalidArgument, "token is empty")
	}
	if err := s.tokens.SaveToken(ctx, token, claims.UserID); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to save token: %v", err)
	}
	return &emptypb.Empty{}, nil
}

func parseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, status.Errorf(codes.InvalidArgument, "invalid id %q", hex)
	}
	return id, nil
}

// storeError maps data.ErrNotFound to NotFound and anything else to Internal.
func storeError(err error, msg string) error {
	if errors.Is(err, data.ErrNotFound) {
		return status.Errorf(codes.NotFound, "not found")
	}
	return status.Errorf(codes.Internal, "%s: %v", msg, err)
}

package main

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/auth"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/data"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/db"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

const bufSize = 1024 * 1024

// startBufServer serves srv over an in-memory listener with the production
// interceptor chain and returns a connected client.
func startBufServer(t *testing.T, srv *Server, limiter *middleware.LimiterStore) v1.JournalServiceClient {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	limits := middleware.Policy{
		v1.JournalService_Login_FullMethodName:     limiter,
		v1.JournalService_Subscribe_FullMethodName: limiter,
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingUnaryInterceptor(),
			authUnaryInterceptor(srv.auth),
			middleware.UnaryInterceptor(limits, callerKey),
		),
		grpc.ChainStreamInterceptor(
			loggingStreamInterceptor(),
			authStreamInterceptor(srv.auth),
			middleware.StreamInterceptor(limits, callerKey),
		),
	)
	registerService(s, srv)
	go func() {
		_ = s.Serve(lis)
	}()

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial bufnet: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
		limiter.Stop()
	})
	return v1.NewJournalServiceClient(conn)
}

func bearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestBufconn_AuthRequired(t *testing.T) {
	e := newTestEnv(false)
	client := startBufServer(t, e.srv, middleware.NewLimiterStore(600, 10, time.Minute))
	ctx := context.Background()

	_, err := client.ListUsers(ctx, &emptypb.Empty{})
	wantCode(t, err, codes.Unauthenticated)

	reg, err := client.Register(ctx, &v1.RegisterRequest{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	dir, err := client.ListUsers(bearer(ctx, reg.GetToken()), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("ListUsers RPC failed: %v", err)
	}
	if len(dir.GetUsers()) != 1 || dir.GetUsers()[0].Email != "alice@example.com" {
		t.Fatalf("unexpected directory %+v", dir.GetUsers())
	}
	if reg.GetExpiresAt() == nil || !reg.GetExpiresAt().AsTime().After(time.Now()) {
		t.Fatalf("expiry did not survive the JSON codec: %v", reg.GetExpiresAt())
	}
}

func TestBufconn_LoginRateLimited(t *testing.T) {
	e := newTestEnv(false)
	client := startBufServer(t, e.srv, middleware.NewLimiterStore(1, 2, time.Minute))
	ctx := context.Background()

	if _, err := client.Register(ctx, &v1.RegisterRequest{Email: "alice@example.com", Password: "pw"}); err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := client.Login(ctx, &v1.LoginRequest{Email: "alice@example.com", Password: "pw"}); err != nil {
			t.Fatalf("Login %d failed: %v", i, err)
		}
	}
	var trailer metadata.MD
	_, err := client.Login(ctx, &v1.LoginRequest{Email: "alice@example.com", Password: "pw"}, grpc.Trailer(&trailer))
	wantCode(t, err, codes.ResourceExhausted)
	if got := trailer.Get(middleware.RetryAfterKey); len(got) != 1 || got[0] == "0" {
		t.Fatalf("expected a retry-after trailer, got %v", got)
	}
}

func TestBufconn_SubscribeWindowAndLiveEvents(t *testing.T) {
	e := newTestEnv(false)
	client := startBufServer(t, e.srv, middleware.NewLimiterStore(600, 10, time.Minute))

	reg, err := client.Register(context.Background(), &v1.RegisterRequest{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(bearer(context.Background(), reg.GetToken()), 5*time.Second)
	defer cancel()

	var ids []string
	for _, text := range []string{"one", "two", "three"} {
		resp, err := client.CreateMessage(ctx, &v1.CreateMessageRequest{Message: &v1.MessageFields{Name: domain.Ptr("alice"), Text: domain.Ptr(text)}})
		if err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
		ids = append(ids, resp.GetId())
	}

	stream, err := client.Subscribe(ctx, &v1.SubscribeRequest{Limit: 2})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	for _, want := range ids[1:] {
		ev, err := stream.Recv()
		if err != nil {
			t.Fatalf("Recv initial failed: %v", err)
		}
		if ev.GetId() != want || ev.GetKind() != v1.KindAdded {
			t.Fatalf("initial window: got %s %s, want added %s", ev.GetKind(), ev.GetId(), want)
		}
		if ev.GetFields().CreatedTime().IsZero() {
			t.Fatal("initial event lost created_at")
		}
	}

	// outside the window: no event
	if _, err := client.UpdateMessage(ctx, &v1.UpdateMessageRequest{Id: ids[0], Fields: &v1.MessageFields{Text: domain.Ptr("edited")}}); err != nil {
		t.Fatalf("UpdateMessage failed: %v", err)
	}
	if _, err := client.UpdateMessage(ctx, &v1.UpdateMessageRequest{Id: ids[2], Fields: &v1.MessageFields{Category: domain.Ptr("mood")}}); err != nil {
		t.Fatalf("UpdateMessage failed: %v", err)
	}

	ev, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv live failed: %v", err)
	}
	if ev.GetId() != ids[2] || ev.GetKind() != v1.KindChanged || ev.GetFields().Category == nil {
		t.Fatalf("unexpected live event %+v", ev)
	}
	if ev.GetFields().Text != nil {
		t.Fatalf("changed event carried untouched text")
	}

	cancel()
	if _, err := stream.Recv(); status.Code(err) != codes.Canceled && status.Code(err) != codes.DeadlineExceeded {
		t.Fatalf("expected stream to end with cancellation, got %v", err)
	}
}

func TestBufconn_SubscribeRejectsBadLimit(t *testing.T) {
	e := newTestEnv(false)
	client := startBufServer(t, e.srv, middleware.NewLimiterStore(600, 10, time.Minute))
	reg, err := client.Register(context.Background(), &v1.RegisterRequest{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	stream, err := client.Subscribe(bearer(context.Background(), reg.GetToken()), &v1.SubscribeRequest{Limit: 101})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	_, err = stream.Recv()
	wantCode(t, err, codes.InvalidArgument)
}

func TestRegisterAndLoginMongo(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	dbClient, err := db.New(ctx, uri, "health_journal_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	defer func() {
		_ = dbClient.Drop(context.Background())
		_ = dbClient.Close(context.Background())
	}()
	if err := dbClient.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	srv := newServer(
		data.NewUsersStore(dbClient.UsersCollection()),
		data.NewMessagesStore(dbClient.MessagesCollection()),
		data.NewMediaStore(dbClient.MediaBucket()),
		data.NewTokensStore(dbClient.PushTokensCollection()),
		auth.NewJWTManager("test-secret", time.Hour),
		NewFeedHub(16),
		serverOptions{publicURL: "http://localhost:8080"},
	)
	client := startBufServer(t, srv, middleware.NewLimiterStore(600, 10, time.Minute))

	email := time.Now().UTC().Format("20060102-150405") + "-it@example.com"
	pwd := "testPass123"

	regResp, err := client.Register(ctx, &v1.RegisterRequest{Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	if regResp.GetToken() == "" || regResp.GetUserId() == "" {
		t.Fatalf("Register response missing token or user_id")
	}

	loginResp, err := client.Login(ctx, &v1.LoginRequest{Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("Login RPC failed: %v", err)
	}
	if loginResp.GetToken() == "" {
		t.Fatalf("Login response missing token")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/auth"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/config"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/data"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/db"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/logging"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

const tokenTTL = 24 * time.Hour

var rootCmd = &cobra.Command{
	Use:          "api",
	Short:        "Health journal backend",
	SilenceUsage: true,
	RunE:         runServer,
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <email> <role>",
	Short: "Change a user's directory role",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetRole,
}

var flagPretty bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "human-readable console logs")
	rootCmd.AddCommand(setRoleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("api exited")
	}
}

func loadConfig() (*config.Server, error) {
	cfg, err := config.LoadServer()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel, flagPretty)
	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Server) (*db.Client, error) {
	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	if err := dbClient.CreateIndexes(ctx); err != nil {
		_ = dbClient.Close(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return dbClient, nil
}

func runSetRole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	dbClient, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = dbClient.Close(context.Background()) }()

	users := data.NewUsersStore(dbClient.UsersCollection())
	if err := users.SetRole(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("set role of %s: %w", args[0], err)
	}
	log.Info().Str("email", args[0]).Str("role", args[1]).Msg("role updated")
	return nil
}

func newJWTManager(cfg *config.Server) *auth.JWTManager {
	// JWT_KEYS allows rotation; JWT_SECRET is the single-key fallback
	if len(cfg.JWTKeys) > 0 {
		return auth.NewJWTManagerFromKeys(cfg.JWTKeys, cfg.JWTActiveKid, tokenTTL)
	}
	return auth.NewJWTManager(cfg.JWTSecret, tokenTTL)
}

// subscribeRPM bounds how often one user may reopen the feed.
const subscribeRPM = 30

// newRatePolicy limits the credential calls per email, and uploads and feed
// subscriptions per user.
func newRatePolicy(cfg *config.Server) middleware.Policy {
	// small burst to allow a couple of quick retries
	signIn := middleware.NewLimiterStore(cfg.RateLimitRPM, 3, time.Minute)
	return middleware.Policy{
		v1.JournalService_Register_FullMethodName:    signIn,
		v1.JournalService_Login_FullMethodName:       signIn,
		v1.JournalService_UploadMedia_FullMethodName: middleware.NewLimiterStore(cfg.UploadRateRPM, 5, time.Minute),
		v1.JournalService_Subscribe_FullMethodName:   middleware.NewLimiterStore(subscribeRPM, 5, time.Minute),
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = dbClient.Close(context.Background()) }()

	users := data.NewUsersStore(dbClient.UsersCollection())
	msgs := data.NewMessagesStore(dbClient.MessagesCollection())
	media := data.NewMediaStore(dbClient.MediaBucket())
	tokens := data.NewTokensStore(dbClient.PushTokensCollection())
	jwtMgr := newJWTManager(cfg)

	limits := newRatePolicy(cfg)
	defer limits.Stop()

	var serverOpts []grpc.ServerOption
	if cfg.TLSCert != "" && cfg.TLSKey != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("failed to load TLS certs: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	}
	// message size must fit the largest upload plus its JSON/base64 framing
	maxMsg := cfg.MaxUploadBytes*4/3 + 64<<10
	serverOpts = append(serverOpts,
		grpc.MaxRecvMsgSize(maxMsg),
		grpc.ChainUnaryInterceptor(
			loggingUnaryInterceptor(),
			authUnaryInterceptor(jwtMgr),
			middleware.UnaryInterceptor(limits, callerKey),
		),
		grpc.ChainStreamInterceptor(
			loggingStreamInterceptor(),
			authStreamInterceptor(jwtMgr),
			middleware.StreamInterceptor(limits, callerKey),
		),
	)
	grpcServer := grpc.NewServer(serverOpts...)

	hub := NewFeedHub(defaultSubscriberBuffer)
	srv := newServer(users, msgs, media, tokens, jwtMgr, hub, serverOptions{
		publicURL:       cfg.PublicURL,
		maxUploadBytes:  cfg.MaxUploadBytes,
		allowRoleSignup: cfg.AllowRoleSignup,
		mediaURLTTL:     cfg.MediaURLTTL,
	})
	registerService(grpcServer, srv)

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           newHTTPHandler(media, dbClient, jwtMgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", lis.Addr().String()).Msg("gRPC server listening")
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error().Err(err).Msg("server exited")
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	// live Subscribe streams never finish on their own
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	return nil
}

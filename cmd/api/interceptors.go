package main

import (
	"context"
	"strings"
	"time"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/auth"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Register and Login are the only calls served without a session.
var publicMethods = map[string]bool{
	v1.JournalService_Register_FullMethodName: true,
	v1.JournalService_Login_FullMethodName:    true,
}

type authContextKey struct{}

func getClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(authContextKey{}).(*auth.Claims)
	return c, ok && c != nil
}

// caller returns the verified claims of the signed-in user making the call.
func caller(ctx context.Context) (*auth.Claims, error) {
	c, ok := getClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing auth claims")
	}
	return c, nil
}

// callerKey charges signed-in calls to the user and public ones to their
// email or address.
func callerKey(ctx context.Context, req any) string {
	if c, ok := getClaimsFromContext(ctx); ok {
		return "user:" + c.UserID
	}
	return middleware.RequestKey(ctx, req)
}

func withClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, authContextKey{}, c)
}

// authenticate validates the "authorization: Bearer <jwt>" metadata entry.
func authenticate(ctx context.Context, j *auth.JWTManager) (*auth.Claims, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing authorization header")
	}
	scheme, token, _ := strings.Cut(strings.TrimSpace(values[0]), " ")
	token = strings.TrimSpace(token)
	if !strings.EqualFold(scheme, "bearer") || token == "" {
		return nil, status.Error(codes.Unauthenticated, "authorization must be a bearer token")
	}

	claims, err := j.VerifyToken(token)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "unauthenticated: %v", err)
	}
	return claims, nil
}

// authUnaryInterceptor returns a UnaryServerInterceptor that enforces JWT authentication
// for all methods except Register and Login.
func authUnaryInterceptor(j *auth.JWTManager) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		claims, err := authenticate(ctx, j)
		if err != nil {
			return nil, err
		}
		return handler(withClaims(ctx, claims), req)
	}
}

// authStreamInterceptor is the stream equivalent of authUnaryInterceptor.
func authStreamInterceptor(j *auth.JWTManager) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if publicMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		claims, err := authenticate(ss.Context(), j)
		if err != nil {
			return err
		}
		return handler(srv, wrappedServerStream{ServerStream: ss, ctx: withClaims(ss.Context(), claims)})
	}
}

// wrappedServerStream wraps grpc.ServerStream to override Context()
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context (with claims)
func (w wrappedServerStream) Context() context.Context { return w.ctx }

func observe(method string, start time.Time, err error) {
	code := status.Code(err)
	elapsed := time.Since(start)
	rpcDuration.WithLabelValues(method, code.String()).Observe(elapsed.Seconds())

	var ev *zerolog.Event
	switch code {
	case codes.OK, codes.Canceled:
		ev = log.Info()
	case codes.Internal, codes.Unknown, codes.DataLoss:
		ev = log.Error().Err(err)
	default:
		ev = log.Warn().Err(err)
	}
	ev.Str("method", method).Str("code", code.String()).Dur("duration", elapsed).Msg("rpc")
}

// loggingUnaryInterceptor logs and measures every unary call.
func loggingUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		observe(info.FullMethod, start, err)
		return resp, err
	}
}

func loggingStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		observe(info.FullMethod, start, err)
		return err
	}
}

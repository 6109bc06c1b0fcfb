// Package middleware holds the journal server's rate limiting: token buckets
// per caller, grouped into a policy per RPC.
package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// idleTTL is how long an unused bucket is kept before cleanup drops it.
const idleTTL = 10 * time.Minute

// RetryAfterKey is the trailer that tells a limited caller how many seconds
// to wait.
const RetryAfterKey = "retry-after"

// LimiterStore keeps one token bucket per caller key.
type LimiterStore struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	buckets  map[string]*bucket
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore allows perMinute events per key with the given burst and
// drops idle buckets every cleanupInterval.
func NewLimiterStore(perMinute, burst int, cleanupInterval time.Duration) *LimiterStore {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	s := &LimiterStore{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		buckets:  map[string]*bucket{},
		interval: cleanupInterval,
		stopCh:   make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *LimiterStore) cleanupLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now().Add(-idleTTL))
		case <-s.stopCh:
			return
		}
	}
}

// sweep drops buckets not used since cutoff.
func (s *LimiterStore) sweep(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, k)
		}
	}
}

// Stop ends the cleanup goroutine. It may be called more than once.
func (s *LimiterStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Len reports how many keys hold a bucket.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *LimiterStore) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if b, ok := s.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}
	l := rate.NewLimiter(s.limit, s.burst)
	s.buckets[key] = &bucket{limiter: l, lastSeen: now}
	return l
}

// Allow reports whether key may act now.
func (s *LimiterStore) Allow(key string) bool {
	ok, _ := s.Take(key)
	return ok
}

// Take consumes a token for key. When none is left it consumes nothing and
// returns how long until one is.
func (s *LimiterStore) Take(key string) (bool, time.Duration) {
	r := s.limiter(key).Reserve()
	if !r.OK() {
		return false, time.Minute
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return false, d
	}
	return true, 0
}

// KeyFunc names who a call is charged to.
type KeyFunc func(ctx context.Context, req any) string

// RequestKey charges a call to the request's email when it carries one
// (Register, Login) and to the remote address otherwise.
func RequestKey(ctx context.Context, req any) string {
	type emailGetter interface{ GetEmail() string }
	if eg, ok := req.(emailGetter); ok {
		if e := eg.GetEmail(); e != "" {
			return fmt.Sprintf("email:%s", e)
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return "addr:" + p.Addr.String()
	}
	return "unknown"
}

// Policy maps full method names to the store that limits them. Several
// methods may share a store; methods not listed are never limited.
type Policy map[string]*LimiterStore

// Stop stops every store of the policy.
func (p Policy) Stop() {
	for _, s := range p {
		s.Stop()
	}
}

func (p Policy) check(ctx context.Context, method string, req any, key KeyFunc) error {
	s, ok := p[method]
	if !ok {
		return nil
	}
	allowed, wait := s.Take(method + "|" + key(ctx, req))
	if allowed {
		return nil
	}
	secs := int(math.Ceil(wait.Seconds()))
	_ = grpc.SetTrailer(ctx, metadata.Pairs(RetryAfterKey, strconv.Itoa(secs)))
	return status.Errorf(codes.ResourceExhausted, "rate limit exceeded, retry in %ds", secs)
}

// UnaryInterceptor limits unary calls by policy. A nil key uses RequestKey.
func UnaryInterceptor(p Policy, key KeyFunc) grpc.UnaryServerInterceptor {
	if key == nil {
		key = RequestKey
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := p.check(ctx, info.FullMethod, req, key); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamInterceptor limits opening streams by policy. Streams carry no
// request yet, so key sees nil.
func StreamInterceptor(p Policy, key KeyFunc) grpc.StreamServerInterceptor {
	if key == nil {
		key = RequestKey
	}
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := p.check(ss.Context(), info.FullMethod, nil, key); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

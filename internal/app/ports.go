package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ToastTimeout is how long a toast stays up.
const ToastTimeout = 2 * time.Second

// Notifier shows transient operator-facing messages.
type Notifier interface {
	Toast(msg string, timeout time.Duration)
}

// Fetcher loads the image at url. It stands in for the browser's image
// loading: a nil error means the image finished loading.
type Fetcher interface {
	Fetch(ctx context.Context, url string) error
}

// HTTPFetcher fetches images over HTTP and discards the body.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher.
func (f HTTPFetcher) Fetch(ctx context.Context, url string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	return nil
}

// ErrPermissionDenied is returned by a TokenSource that may not notify.
var ErrPermissionDenied = errors.New("notification permission denied")

// StaticTokenSource hands out a fixed device token. An empty token is never
// granted permission.
type StaticTokenSource string

// Token implements domain.TokenSource.
func (s StaticTokenSource) Token(context.Context) (string, error) {
	return string(s), nil
}

// RequestPermission implements domain.TokenSource.
func (s StaticTokenSource) RequestPermission(context.Context) error {
	if s == "" {
		return ErrPermissionDenied
	}
	return nil
}

// The adapters below satisfy the view ports. Their callbacks always run on
// the controller's loop.

type scheduler struct{ l *loop }

func (s scheduler) Defer(fn func()) { s.l.post(fn) }

type imageLoader struct{ c *Controller }

func (il imageLoader) Load(src string, done func()) {
	il.c.background(func(ctx context.Context) {
		if err := il.c.deps.Images.Fetch(ctx, src); err != nil {
			log.Debug().Err(err).Str("src", src).Msg("image did not load")
			return
		}
		il.c.loop.post(done)
	})
}

type refResolver struct{ c *Controller }

func (r refResolver) Resolve(ref string, done func(string, error)) {
	r.c.background(func(ctx context.Context) {
		url, err := r.c.deps.Media.Resolve(ctx, ref)
		r.c.loop.post(func() { done(url, err) })
	})
}

type logScroller struct{}

func (logScroller) ScrollToBottom(containerID string) {
	log.Debug().Str("container", containerID).Msg("scroll to bottom")
}

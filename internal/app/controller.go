// Package app is the journal client's controller. It wires the session gate,
// the message feed and the view together and runs every handler on a single
// event-loop goroutine; store calls run on their own goroutines and post
// their results back to the loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/journal"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/session"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/view"
	"github.com/rs/zerolog/log"
)

// Deps are the controller's collaborators. Push, Tokens, Scroller and
// OnSession are optional.
type Deps struct {
	Identity  domain.IdentityProvider
	Directory domain.Directory
	Store     domain.MessageStore
	Media     domain.MediaStore
	Push      domain.PushRegistry
	Tokens    domain.TokenSource
	Notifier  Notifier
	Images    Fetcher
	Scroller  view.Scroller

	// OnSession sees every session change before any handler runs, so
	// adapters can switch credentials.
	OnSession func(*domain.Session)

	// Limit is the feed window; zero means domain.DefaultFeedLimit.
	Limit int
}

// Controller drives one journal page.
type Controller struct {
	deps  Deps
	limit int
	gate  *session.Gate
	roles *session.Resolver
	feed  *journal.Feed
	view  *view.Renderer
	loop  *loop

	ctx    context.Context
	cancel context.CancelFunc

	// gen changes on every session transition; loop only.
	gen int

	pending sync.WaitGroup
	errMu   sync.Mutex
	errs    []error
}

// New wires a controller. It returns domain.ErrMisconfigured when a required
// collaborator is missing.
func New(deps Deps) (*Controller, error) {
	if deps.Identity == nil || deps.Directory == nil || deps.Store == nil ||
		deps.Media == nil || deps.Notifier == nil || deps.Images == nil {
		return nil, domain.ErrMisconfigured
	}
	if deps.Scroller == nil {
		deps.Scroller = logScroller{}
	}
	c := &Controller{
		deps:  deps,
		limit: deps.Limit,
		gate:  session.NewGate(deps.Identity),
		roles: session.NewResolver(deps.Directory),
		feed:  journal.NewFeed(deps.Store),
		loop:  newLoop(),
	}
	if c.limit <= 0 {
		c.limit = domain.DefaultFeedLimit
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	r, err := view.New(view.Ports{
		Images:    imageLoader{c},
		Scheduler: scheduler{c.loop},
		Scroller:  deps.Scroller,
		Resolver:  refResolver{c},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMisconfigured, err)
	}
	c.view = r

	c.gate.OnChange(func(s *domain.Session) {
		if c.deps.OnSession != nil {
			c.deps.OnSession(s)
		}
		c.pending.Add(1)
		c.loop.post(func() {
			defer c.pending.Done()
			c.sessionChanged(s)
		})
	})
	return c, nil
}

// Run processes handlers until ctx is done, then stops the feed. Every other
// method needs Run to be active and must not be called from a handler.
func (c *Controller) Run(ctx context.Context) {
	defer c.cancel()
	go func() {
		select {
		case <-ctx.Done():
			c.cancel()
		case <-c.ctx.Done():
		}
	}()
	c.loop.run(c.ctx)
	c.feed.Close()
}

// call runs fn on the loop and waits for its result.
func (c *Controller) call(fn func() error) error {
	errc := make(chan error, 1)
	c.loop.post(func() { errc <- fn() })
	select {
	case err := <-errc:
		return err
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// background runs fn off the loop. It is not tracked by Drain.
func (c *Controller) background(fn func(ctx context.Context)) {
	go fn(c.ctx)
}

// store runs op off the loop, then hands control back to the loop: then
// runs on success, a failure is reported.
func (c *Controller) store(what string, op func(ctx context.Context) error, then func()) {
	c.pending.Add(1)
	go func() {
		err := op(c.ctx)
		c.loop.post(func() {
			defer c.pending.Done()
			if err != nil {
				c.fail(what, err)
				return
			}
			if then != nil {
				then()
			}
		})
	}()
}

// fail reports err: user errors as a toast, everything as a log line.
func (c *Controller) fail(what string, err error) {
	if msg := domain.Toast(err); msg != "" {
		c.deps.Notifier.Toast(msg, ToastTimeout)
	} else {
		log.Error().Err(err).Str("op", what).Msg("store call failed")
	}
	c.errMu.Lock()
	c.errs = append(c.errs, fmt.Errorf("%s: %w", what, err))
	c.errMu.Unlock()
}

// reject shows a user error and returns it.
func (c *Controller) reject(err error) error {
	c.deps.Notifier.Toast(domain.Toast(err), ToastTimeout)
	return err
}

// Drain waits for every store call started so far, and those they start,
// to finish. It returns the failures seen since the previous Drain.
func (c *Controller) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.errMu.Lock()
	defer c.errMu.Unlock()
	err := errors.Join(c.errs...)
	c.errs = nil
	return err
}

// SignIn runs the identity flow. The page switches once the role is known.
func (c *Controller) SignIn(ctx context.Context) error {
	_, err := c.gate.SignIn(ctx)
	return err
}

// SignOut drops the session and tears the page down.
func (c *Controller) SignOut() {
	c.gate.SignOut()
}

// Session returns the live session, or nil.
func (c *Controller) Session() *domain.Session {
	return c.gate.Current()
}

func (c *Controller) sessionChanged(s *domain.Session) {
	c.gen++
	c.feed.Close()
	c.view.Clear()
	if s == nil {
		c.view.HideProfile()
		log.Info().Msg("signed out")
		return
	}

	c.view.ShowProfile(s.Identity)
	log.Info().Str("email", s.Email).Msg("signed in")

	gen := c.gen
	var surface domain.Surface
	c.store("resolve role", func(ctx context.Context) error {
		var err error
		surface, err = c.roles.Surface(ctx, s.Identity)
		return err
	}, func() {
		if gen != c.gen {
			return
		}
		log.Info().Str("surface", surface.String()).Msg("surface selected")
		c.view.SetSurface(surface)
		c.openFeed(gen)
	})
	c.registerPushToken()
}

func (c *Controller) openFeed(gen int) {
	c.feed.Open(c.ctx, c.limit,
		func(ev domain.Event) {
			c.loop.post(func() {
				if gen == c.gen {
					c.view.Upsert(ev)
				}
			})
		},
		func(err error) {
			log.Error().Err(err).Msg("message feed stopped")
		},
	)
}

// registerPushToken stores the device token, asking for permission once if
// there is none yet. A refusal only disables notifications.
func (c *Controller) registerPushToken() {
	if c.deps.Push == nil || c.deps.Tokens == nil {
		return
	}
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx := c.ctx
		token, err := c.deps.Tokens.Token(ctx)
		if err == nil && token == "" {
			if err := c.deps.Tokens.RequestPermission(ctx); err != nil {
				log.Warn().Err(err).Msg("notifications disabled")
				return
			}
			token, err = c.deps.Tokens.Token(ctx)
		}
		if err != nil {
			log.Warn().Err(err).Msg("unable to get messaging token")
			return
		}
		if token == "" {
			log.Warn().Msg("notifications disabled: no device token")
			return
		}
		if err := c.deps.Push.RegisterPushToken(ctx, token); err != nil {
			log.Error().Err(err).Msg("unable to save messaging token")
			return
		}
		log.Debug().Msg("messaging token saved")
	}()
}

// SendText posts a text message. The input is cleared once it is stored.
// Empty text does nothing beyond returning ErrEmptyMessage.
func (c *Controller) SendText(text, category string) error {
	return c.call(func() error {
		if text == "" {
			return domain.ErrEmptyMessage
		}
		s := c.gate.Current()
		if s == nil {
			return c.reject(domain.ErrNotSignedIn)
		}
		d := domain.Draft{
			Name:     s.DisplayName,
			PhotoURL: s.Picture(),
			Body:     domain.TextBody{Content: text},
			Category: category,
		}
		c.view.SetMessageInput(text, category)
		c.store("send message", func(ctx context.Context) error {
			_, err := c.deps.Store.Create(ctx, d)
			return err
		}, func() {
			c.view.SetMessageInput("", category)
			c.view.SetSendEnabled(false)
		})
		return nil
	})
}

// SendImage posts an image message: a placeholder first, then the upload,
// then the placeholder is pointed at the stored file.
func (c *Controller) SendImage(f domain.File) error {
	return c.call(func() error {
		if _, ok := domain.ImageType(f); !ok {
			return c.reject(domain.ErrNotImage)
		}
		s := c.gate.Current()
		if s == nil {
			return c.reject(domain.ErrNotSignedIn)
		}
		d := domain.Draft{
			Name:     s.DisplayName,
			PhotoURL: s.Picture(),
			Body:     domain.ImageBody{URI: domain.LoadingImageURL},
		}
		var id, ref string
		c.store("send image", func(ctx context.Context) error {
			var err error
			id, err = c.deps.Store.Create(ctx, d)
			if err != nil {
				return err
			}
			ref, err = c.deps.Media.Upload(ctx, f, s.UID, id)
			if err != nil {
				return err
			}
			return c.deps.Store.Update(ctx, id, domain.Fields{ImageURI: domain.Ptr(ref)})
		}, func() {
			log.Debug().Str("id", id).Str("ref", ref).Msg("image shared")
		})
		return nil
	})
}

// SubmitComment appends text to message id's thread and closes its form.
// Empty text is ignored.
func (c *Controller) SubmitComment(id, text string) error {
	return c.call(func() error {
		if text == "" {
			return nil
		}
		if c.gate.Current() == nil {
			return c.reject(domain.ErrNotSignedIn)
		}
		if c.view.Surface() != domain.SurfaceStaff {
			return c.reject(domain.ErrNotStaff)
		}
		c.view.SetCommentInput(id, text)
		c.store("add comment", func(ctx context.Context) error {
			return c.deps.Store.AddComment(ctx, id, text)
		}, func() {
			c.view.CloseCommentForm(id)
		})
		return nil
	})
}

// OpenCommentForm shows the comment form of message id. It reports false
// when the message has none.
func (c *Controller) OpenCommentForm(id string) bool {
	var ok bool
	_ = c.call(func() error {
		ok = c.view.OpenCommentForm(id)
		return nil
	})
	return ok
}

// CloseCommentForm hides the comment form of message id.
func (c *Controller) CloseCommentForm(id string) {
	_ = c.call(func() error {
		c.view.CloseCommentForm(id)
		return nil
	})
}

// Filter shows only the patient messages sent by name.
func (c *Controller) Filter(name string) {
	_ = c.call(func() error {
		c.view.Filter(name)
		return nil
	})
}

// InputChanged mirrors the message input and enables send when it is
// not empty.
func (c *Controller) InputChanged(text, category string) {
	_ = c.call(func() error {
		c.view.SetMessageInput(text, category)
		c.view.SetSendEnabled(text != "")
		return nil
	})
}

// Render writes the page as HTML.
func (c *Controller) Render(w io.Writer) error {
	return c.call(func() error {
		return c.view.Render(w)
	})
}

// Inspect runs fn against the renderer on the loop.
func (c *Controller) Inspect(fn func(*view.Renderer)) {
	_ = c.call(func() error {
		fn(c.view)
		return nil
	})
}

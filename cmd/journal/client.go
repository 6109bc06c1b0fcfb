package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/app"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/config"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/journal"
	"google.golang.org/grpc"
)

// stderrNotifier prints toasts for the operator.
type stderrNotifier struct{}

func (stderrNotifier) Toast(msg string, _ time.Duration) {
	fmt.Fprintln(os.Stderr, msg)
}

// client is a signed-in controller plus its connection.
type client struct {
	conn *grpc.ClientConn
	ctrl *app.Controller
	stop context.CancelFunc
	done chan struct{}
}

func newDeps(c config.Client, rpc v1.JournalServiceClient, register bool) app.Deps {
	remote := journal.NewRemote(rpc)
	deps := app.Deps{
		Identity: journal.NewPasswordIdentity(rpc, journal.Credentials{
			Email:       c.Email,
			Password:    c.Password,
			DisplayName: c.Name,
			Register:    register,
		}),
		Directory: remote,
		Store:     remote,
		Media:     remote,
		Push:      remote,
		Notifier:  stderrNotifier{},
		Images:    app.HTTPFetcher{},
		OnSession: remote.SetSession,
		Limit:     c.Limit,
	}
	if c.PushToken != "" {
		deps.Tokens = app.StaticTokenSource(c.PushToken)
	}
	return deps
}

// openClient connects, signs in and waits until the page has its surface.
func openClient(ctx context.Context, register bool) (*client, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return nil, errors.New("email and password are required (flags or config file)")
	}
	conn, err := journal.Dial(cfg.Server, !cfg.Insecure)
	if err != nil {
		return nil, err
	}
	ctrl, err := app.New(newDeps(cfg, v1.NewJournalServiceClient(conn), register))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	runCtx, stop := context.WithCancel(ctx)
	cl := &client{conn: conn, ctrl: ctrl, stop: stop, done: make(chan struct{})}
	go func() {
		defer close(cl.done)
		ctrl.Run(runCtx)
	}()

	if err := ctrl.SignIn(ctx); err != nil {
		cl.Close()
		return nil, err
	}
	if err := ctrl.Drain(ctx); err != nil {
		cl.Close()
		return nil, err
	}
	return cl, nil
}

func (cl *client) Session() *domain.Session {
	return cl.ctrl.Session()
}

// Close stops the controller and drops the connection.
func (cl *client) Close() {
	cl.stop()
	<-cl.done
	_ = cl.conn.Close()
}

package journal

import (
	"context"
	"fmt"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
)

// Credentials identify an account on the journal server.
type Credentials struct {
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
	// Register creates the account instead of logging into it.
	Register bool
}

// PasswordIdentity is a domain.IdentityProvider backed by the server's
// Register and Login calls.
type PasswordIdentity struct {
	client v1.JournalServiceClient
	creds  Credentials
}

// NewPasswordIdentity returns an identity provider for creds.
func NewPasswordIdentity(client v1.JournalServiceClient, creds Credentials) *PasswordIdentity {
	return &PasswordIdentity{client: client, creds: creds}
}

// Authenticate signs in and returns the new session.
func (p *PasswordIdentity) Authenticate(ctx context.Context) (*domain.Session, error) {
	var (
		resp *v1.AuthResponse
		err  error
	)
	if p.creds.Register {
		resp, err = p.client.Register(ctx, &v1.RegisterRequest{
			Email:       p.creds.Email,
			Password:    p.creds.Password,
			DisplayName: p.creds.DisplayName,
			PhotoUrl:    p.creds.PhotoURL,
		})
	} else {
		resp, err = p.client.Login(ctx, &v1.LoginRequest{Email: p.creds.Email, Password: p.creds.Password})
	}
	if err != nil {
		return nil, fmt.Errorf("sign in %s: %w", p.creds.Email, err)
	}

	s := &domain.Session{
		Identity: domain.Identity{
			UID:         resp.GetUserId(),
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
			PhotoURL:    resp.PhotoUrl,
		},
		Token: resp.GetToken(),
	}
	if ts := resp.GetExpiresAt(); ts != nil {
		s.ExpiresAt = ts.AsTime()
	}
	return s, nil
}

// Revoke forgets nothing server-side: tokens are stateless and simply age out.
func (p *PasswordIdentity) Revoke() {}

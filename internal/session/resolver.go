package session

import (
	"context"
	"fmt"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/normalize"
)

// Resolver classifies a signed-in identity by scanning the user directory.
type Resolver struct {
	dir domain.Directory
}

// NewResolver returns a Resolver over dir.
func NewResolver(dir domain.Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve returns the role of the directory record whose email matches id,
// exactly as the directory stores it. Only the literal "patient" is a
// patient; an empty or differently cased role is staff. A user missing from
// the directory is a patient.
func (r *Resolver) Resolve(ctx context.Context, id domain.Identity) (domain.Role, error) {
	users, err := r.dir.ListUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve role for %s: %w", id.Email, err)
	}
	email := normalize.Email(id.Email)
	for _, u := range users {
		if normalize.Email(u.Email) == email {
			return u.Role, nil
		}
	}
	return domain.RolePatient, nil
}

// Surface is Resolve mapped to the surface the role gets.
func (r *Resolver) Surface(ctx context.Context, id domain.Identity) (domain.Surface, error) {
	role, err := r.Resolve(ctx, id)
	if err != nil {
		return domain.SurfaceNone, err
	}
	return domain.SurfaceFor(role), nil
}

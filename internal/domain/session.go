package domain

import (
	"strings"
	"time"
)

// Role is a directory role. Everything that is not RolePatient is staff.
type Role string

const RolePatient Role = "patient"

// IsStaff reports whether r grants the staff surface.
func (r Role) IsStaff() bool {
	return r != RolePatient
}

// Surface is one of the two mutually exclusive message containers.
type Surface int

const (
	SurfaceNone Surface = iota
	SurfacePatient
	SurfaceStaff
)

func (s Surface) String() string {
	switch s {
	case SurfacePatient:
		return "patient"
	case SurfaceStaff:
		return "staff"
	default:
		return "none"
	}
}

// SurfaceFor maps a role to its surface.
func SurfaceFor(r Role) Surface {
	if r.IsStaff() {
		return SurfaceStaff
	}
	return SurfacePatient
}

// UserRecord is one directory entry.
type UserRecord struct {
	Email string
	Role  Role
}

// Identity is who is signed in.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Picture returns the profile picture or the placeholder.
func (i Identity) Picture() string {
	if strings.TrimSpace(i.PhotoURL) == "" {
		return ProfilePlaceholderURL
	}
	return i.PhotoURL
}

// Session is a signed-in identity plus its bearer token.
type Session struct {
	Identity
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the session's token is no longer valid at now.
// A session without an expiry never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

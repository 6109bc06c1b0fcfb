package domain

import "errors"

// User errors abort an operation. All but ErrEmptyMessage are shown to the
// operator as a toast.
var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrNotImage     = errors.New("file is not an image")
	ErrEmptyMessage = errors.New("message is empty")
	ErrNotStaff     = errors.New("only staff can comment")
)

// ErrMisconfigured means the client was started without its collaborators.
var ErrMisconfigured = errors.New("journal client is not configured")

// Toast returns the operator-facing text for a user error, or "" if err is
// not one and should only be logged.
func Toast(err error) string {
	switch {
	case errors.Is(err, ErrNotSignedIn):
		return "You must sign-in first"
	case errors.Is(err, ErrNotImage):
		return "You can only share images"
	case errors.Is(err, ErrNotStaff):
		return "Only staff can comment"
	default:
		return ""
	}
}

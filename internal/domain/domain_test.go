package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestFieldsBody(t *testing.T) {
	cases := []struct {
		name string
		f    Fields
		want Body
	}{
		{"text", Fields{Text: Ptr("hi")}, TextBody{Content: "hi"}},
		{"image", Fields{ImageURI: Ptr("media://abc")}, ImageBody{URI: "media://abc"}},
		{"text wins", Fields{Text: Ptr("hi"), ImageURI: Ptr("x")}, TextBody{Content: "hi"}},
		{"empty text falls through", Fields{Text: Ptr(""), ImageURI: Ptr("x")}, ImageBody{URI: "x"}},
		{"neither", Fields{}, nil},
	}
	for _, c := range cases {
		if got := c.f.Body(); got != c.want {
			t.Fatalf("%s: Body() = %#v, want %#v", c.name, got, c.want)
		}
	}
}

func TestMessageFieldsRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := Message{ID: "m1", Name: "alice", Body: ImageBody{URI: "u"}, Category: "sleep", CreatedAt: at}
	f := m.Fields()
	if f.Text != nil {
		t.Fatalf("image message must not carry text: %q", *f.Text)
	}
	if f.ImageURI == nil || *f.ImageURI != "u" {
		t.Fatalf("image uri missing")
	}
	if f.PhotoURL != nil {
		t.Fatalf("empty photo must be absent")
	}
	if f.CreatedAt == nil || !f.CreatedAt.Equal(at) {
		t.Fatalf("created at missing")
	}

	d := Draft{Name: "bob", Body: TextBody{Content: "x"}}
	if df := d.Fields(); df.CreatedAt != nil {
		t.Fatal("draft must never carry a timestamp")
	}
}

func TestSurfaceFor(t *testing.T) {
	if SurfaceFor(RolePatient) != SurfacePatient {
		t.Fatal("patient must get patient surface")
	}
	for _, r := range []Role{"doctor", "nurse", "admin"} {
		if SurfaceFor(r) != SurfaceStaff {
			t.Fatalf("role %q must get staff surface", r)
		}
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	var none *Session
	if !none.Expired(now) {
		t.Fatal("nil session must count as expired")
	}
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Fatal("session expired too early")
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Fatal("session must expire at ExpiresAt")
	}
	if (&Session{}).Expired(now) {
		t.Fatal("session without expiry must not expire")
	}
}

func TestIdentityPicture(t *testing.T) {
	if got := (Identity{}).Picture(); got != ProfilePlaceholderURL {
		t.Fatalf("Picture() = %q", got)
	}
	if got := (Identity{PhotoURL: "p.png"}).Picture(); got != "p.png" {
		t.Fatalf("Picture() = %q", got)
	}
}

func TestToast(t *testing.T) {
	if got := Toast(fmt.Errorf("send: %w", ErrNotSignedIn)); got != "You must sign-in first" {
		t.Fatalf("Toast(wrapped ErrNotSignedIn) = %q", got)
	}
	if got := Toast(ErrNotImage); got != "You can only share images" {
		t.Fatalf("Toast(ErrNotImage) = %q", got)
	}
	// an empty send is silently ignored, not reported
	if got := Toast(ErrEmptyMessage); got != "" {
		t.Fatalf("Toast(ErrEmptyMessage) = %q", got)
	}
	if got := Toast(errors.New("connection reset")); got != "" {
		t.Fatalf("store failure must not produce a toast, got %q", got)
	}
}

package data

import (
	"bytes"
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMediaPath(t *testing.T) {
	cases := map[string]string{
		"photo.png":         "u1/m1/photo.png",
		"../../etc/passwd":  "u1/m1/passwd",
		`C:\Users\me\a.jpg`: "u1/m1/a.jpg",
		"":                  "u1/m1/upload",
	}
	for in, want := range cases {
		if got := MediaPath("u1", "m1", in); got != want {
			t.Fatalf("MediaPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMediaRefRoundTrip(t *testing.T) {
	id := bson.NewObjectID()
	ref := MediaRef(id)
	got, err := ParseMediaRef(ref)
	if err != nil {
		t.Fatalf("ParseMediaRef(%q) failed: %v", ref, err)
	}
	if got != id {
		t.Fatalf("round trip mismatch: %s vs %s", got.Hex(), id.Hex())
	}
	if _, err := ParseMediaRef("https://example.com/a.png"); err == nil {
		t.Fatal("expected a plain URL to be rejected")
	}
}

func TestMediaUploadAndDownload(t *testing.T) {
	c := setupDB(t)
	media := NewMediaStore(c.MediaBucket())
	ctx := context.Background()

	content := []byte("\x89PNG\r\n\x1a\nfake")
	f, err := media.Upload(ctx, "uid-7", "msg-9", "chart.png", "image/png", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if f.FullPath != "uid-7/msg-9/chart.png" {
		t.Fatalf("unexpected full path %q", f.FullPath)
	}
	if f.ContentType != "image/png" || f.Size != int64(len(content)) {
		t.Fatalf("unexpected metadata %+v", f)
	}

	var buf bytes.Buffer
	if _, err := media.Download(ctx, f.ID, &buf); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), content) {
		t.Fatalf("downloaded content mismatch")
	}
}

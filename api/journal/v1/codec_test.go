package v1

import (
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestCodecRegistered(t *testing.T) {
	if encoding.GetCodec(Codec) == nil {
		t.Fatalf("codec %q not registered", Codec)
	}
}

func TestCodec_PartialFields(t *testing.T) {
	c := jsonCodec{}
	url := "media://abc"
	b, err := c.Marshal(&UpdateMessageRequest{Id: "m1", Fields: &MessageFields{ImageUrl: &url}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"image_url":"media://abc"`) {
		t.Fatalf("missing image_url in %s", s)
	}
	for _, absent := range []string{"text", "name", "created_at", "comments"} {
		if strings.Contains(s, `"`+absent+`"`) {
			t.Fatalf("absent field %q was encoded: %s", absent, s)
		}
	}

	var got UpdateMessageRequest
	if err := c.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.GetFields().Text != nil || got.GetFields().ImageUrl == nil || *got.GetFields().ImageUrl != url {
		t.Fatalf("unexpected fields %+v", got.GetFields())
	}
}

func TestCodec_EmptyTextSurvives(t *testing.T) {
	c := jsonCodec{}
	empty := ""
	b, err := c.Marshal(&MessageFields{Text: &empty})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got MessageFields
	if err := c.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Text == nil || *got.Text != "" {
		t.Fatal("a present empty text must stay present")
	}
}

func TestCodec_WellKnownTypes(t *testing.T) {
	c := jsonCodec{}
	b, err := c.Marshal(&emptypb.Empty{})
	if err != nil {
		t.Fatalf("Marshal Empty failed: %v", err)
	}
	if string(b) != "{}" {
		t.Fatalf("Empty encoded as %s", b)
	}
	if err := c.Unmarshal(b, &emptypb.Empty{}); err != nil {
		t.Fatalf("Unmarshal Empty failed: %v", err)
	}

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b, err = c.Marshal(&AuthResponse{Token: "t", ExpiresAt: timestamppb.New(at)})
	if err != nil {
		t.Fatalf("Marshal AuthResponse failed: %v", err)
	}
	var got AuthResponse
	if err := c.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal AuthResponse failed: %v", err)
	}
	if !got.GetExpiresAt().AsTime().Equal(at) {
		t.Fatalf("expires_at = %v", got.GetExpiresAt().AsTime())
	}
}

func TestMessageFieldsCreatedTime(t *testing.T) {
	var nilFields *MessageFields
	if !nilFields.CreatedTime().IsZero() {
		t.Fatal("nil fields must have zero time")
	}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := (&MessageFields{CreatedAt: timestamppb.New(at)}).CreatedTime(); !got.Equal(at) {
		t.Fatalf("CreatedTime = %v", got)
	}
}

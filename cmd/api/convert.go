package main

import (
	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/data"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func patchFromFields(f *v1.MessageFields) data.MessagePatch {
	if f == nil {
		return data.MessagePatch{}
	}
	return data.MessagePatch{
		Name:     f.Name,
		PhotoURL: f.PhotoUrl,
		Text:     f.Text,
		ImageURL: f.ImageUrl,
		Category: f.Category,
	}
}

// fieldsFromPatch carries exactly the fields a write touched.
func fieldsFromPatch(p data.MessagePatch) *v1.MessageFields {
	return &v1.MessageFields{
		Name:     p.Name,
		PhotoUrl: p.PhotoURL,
		Text:     p.Text,
		ImageUrl: p.ImageURL,
		Category: p.Category,
	}
}

func fieldsFromMessage(m *data.Message) *v1.MessageFields {
	f := &v1.MessageFields{
		Name:      m.Name,
		PhotoUrl:  m.PhotoURL,
		Text:      m.Text,
		ImageUrl:  m.ImageURL,
		Category:  m.Category,
		CreatedAt: timestamppb.New(m.CreatedAt),
		Comments:  m.Comments,
	}
	return f
}

func messageEvent(kind string, m *data.Message) *v1.UpsertEvent {
	return &v1.UpsertEvent{Id: m.ID.Hex(), Kind: kind, Fields: fieldsFromMessage(m)}
}

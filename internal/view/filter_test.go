package view

import (
	"testing"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
)

func TestFilterByName(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.Upsert(textEvent("m1", "alice", "a"))
	f.r.Upsert(textEvent("m2", "bob", "b"))
	f.r.Upsert(textEvent("m3", "alice", "c"))

	f.r.Filter("ALICE")
	for id, hidden := range map[string]bool{"m1": false, "m2": true, "m3": false} {
		if IsHidden(f.r.MessageNode(id)) != hidden {
			t.Fatalf("%s: hidden=%v, want %v", id, IsHidden(f.r.MessageNode(id)), hidden)
		}
	}

	// padding is part of the value
	f.r.Filter(" alice ")
	for _, id := range []string{"m1", "m2", "m3"} {
		if !IsHidden(f.r.MessageNode(id)) {
			t.Fatalf("%s matched a padded filter", id)
		}
	}

	f.r.Filter("")
	for _, id := range []string{"m1", "m2", "m3"} {
		if IsHidden(f.r.MessageNode(id)) {
			t.Fatalf("%s still hidden after clearing the filter", id)
		}
	}
}

func TestFilterIgnoresStaffSurface(t *testing.T) {
	f := newFixture(t, domain.SurfaceStaff)
	f.r.Upsert(textEvent("m1", "bob", "b"))
	f.r.Filter("alice")
	if IsHidden(f.r.MessageNode("m1")) {
		t.Fatal("filter must only act on the patient surface")
	}
}

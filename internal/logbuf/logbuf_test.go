package logbuf

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/hypertask-network/hypertask/internal/store"
)

func TestTail_RingBound(t *testing.T) {
	b := New(nil, false)

	for i := 0; i < maxEntries+50; i++ {
		b.Infof("Test", "entry %d", i)
	}

	all := b.Tail(0)
	if len(all) != maxEntries {
		t.Fatalf("ring holds %d entries, want %d", len(all), maxEntries)
	}
	// Oldest surviving entry is the 50th written.
	if want := "entry 50"; all[0].Message != want {
		t.Errorf("oldest entry = %q, want %q", all[0].Message, want)
	}

	tail := b.Tail(3)
	if len(tail) != 3 {
		t.Fatalf("Tail(3) returned %d entries", len(tail))
	}
	if want := fmt.Sprintf("entry %d", maxEntries+49); tail[2].Message != want {
		t.Errorf("newest entry = %q, want %q", tail[2].Message, want)
	}
}

func TestFilters(t *testing.T) {
	b := New(nil, false)
	b.Info("Wallet", "deposit")
	b.Error("Backend", "timeout")
	b.Success("Project", "approved")
	b.Error("Backend", "retry failed")

	if got := b.ByLevel(LevelError); len(got) != 2 {
		t.Errorf("ByLevel(error) = %d entries, want 2", len(got))
	}
	if got := b.ByCategory("backend"); len(got) != 2 {
		t.Errorf("ByCategory(backend) = %d entries, want 2 (case-insensitive)", len(got))
	}
	if got := b.ByCategory("Wallet"); len(got) != 1 || got[0].Message != "deposit" {
		t.Errorf("ByCategory(Wallet) = %+v", got)
	}
}

func TestExport_ValidJSON(t *testing.T) {
	b := New(nil, false)
	b.Log(LevelInfo, "Test", "with data", map[string]int{"n": 1})

	raw, err := b.Export()
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(entries) != 1 || entries[0].Data != `{"n":1}` {
		t.Errorf("exported entries = %+v", entries)
	}
}

func TestExport_EmptyBuffer(t *testing.T) {
	b := New(nil, false)

	raw, err := b.Export()
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("empty export = %s, want []", raw)
	}
}

func TestPersistedMirror(t *testing.T) {
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	defer db.Close()

	b := New(db, false)
	for i := 0; i < maxPersisted+20; i++ {
		b.Infof("Test", "entry %d", i)
	}

	recs, err := b.LoadPersisted()
	if err != nil {
		t.Fatalf("LoadPersisted() error: %v", err)
	}
	if len(recs) != maxPersisted {
		t.Errorf("persisted %d records, want %d", len(recs), maxPersisted)
	}

	b.Clear()
	if got := b.Tail(0); len(got) != 0 {
		t.Errorf("ring not empty after Clear: %d entries", len(got))
	}
	recs, _ = b.LoadPersisted()
	if len(recs) != 0 {
		t.Errorf("mirror not empty after Clear: %d records", len(recs))
	}
}

package history

import (
	"testing"

	"github.com/hypertask-network/hypertask/internal/domain"
	"github.com/hypertask-network/hypertask/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(db)
}

func TestRecord_ConvertsProject(t *testing.T) {
	svc := newTestService(t)

	p := &domain.Project{
		ID:         "p1",
		UserPrompt: "logo for my bakery",
		Status:     domain.ProjectCompleted,
		Transaction: domain.Transaction{
			ID:    "t1",
			Total: 70,
		},
		Deliverables: []domain.Deliverable{
			{Type: domain.DeliverableImage, Name: "logo.svg", Content: "data:..."},
			{Type: domain.DeliverableText, Name: "slogan.txt", Content: "hi"},
		},
	}

	item, err := svc.Record(p, domain.HistoryCompleted)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if item.ID != "p1" || item.Cost != 70 || item.Status != domain.HistoryCompleted {
		t.Errorf("item = %+v", item)
	}
	if item.Timestamp == "" {
		t.Error("timestamp not set")
	}
	// Only type+name survive into the history reference; content does not.
	if len(item.Deliverables) != 2 || item.Deliverables[0].Name != "logo.svg" {
		t.Errorf("deliverable refs = %+v", item.Deliverables)
	}

	items, err := svc.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Errorf("persisted items = %+v", items)
	}
}

func TestDeleteAndClear(t *testing.T) {
	svc := newTestService(t)
	svc.Append(domain.HistoryItem{ID: "a", Prompt: "x", Status: domain.HistoryCompleted, Timestamp: "2026-08-28 12:00"})
	svc.Append(domain.HistoryItem{ID: "b", Prompt: "y", Status: domain.HistoryFailed, Timestamp: "2026-08-28 12:01"})

	if err := svc.Delete("a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := svc.Delete("a"); err != domain.ErrHistoryNotFound {
		t.Errorf("Delete(missing) = %v, want ErrHistoryNotFound", err)
	}

	if err := svc.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	items, _ := svc.List()
	if len(items) != 0 {
		t.Errorf("items after clear = %+v", items)
	}
}

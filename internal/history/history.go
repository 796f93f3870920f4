// Package history records completed projects across sessions.
package history

import (
	"time"

	"github.com/hypertask-network/hypertask/internal/domain"
	"github.com/hypertask-network/hypertask/internal/store"
)

// timestampLayout is the display format stored with each entry.
const timestampLayout = "2006-01-02 15:04"

// Service wraps the persisted project history.
type Service struct {
	db *store.DB
}

// NewService creates a history service over the given store.
func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// Record converts a finished project into a history item and appends it.
func (s *Service) Record(p *domain.Project, status domain.HistoryStatus) (domain.HistoryItem, error) {
	item := domain.HistoryItem{
		ID:        p.ID,
		Prompt:    p.UserPrompt,
		Status:    status,
		Timestamp: time.Now().Format(timestampLayout),
		Cost:      p.Transaction.Total,
	}
	for _, d := range p.Deliverables {
		item.Deliverables = append(item.Deliverables, domain.DeliverableRef{
			Type: d.Type,
			Name: d.Name,
		})
	}
	return item, s.db.InsertHistoryItem(item)
}

// Append stores a prebuilt history item.
func (s *Service) Append(item domain.HistoryItem) error {
	return s.db.InsertHistoryItem(item)
}

// List returns all history items in insertion order.
func (s *Service) List() ([]domain.HistoryItem, error) {
	return s.db.ListHistory()
}

// Delete removes one item by project id.
func (s *Service) Delete(id string) error {
	return s.db.DeleteHistoryItem(id)
}

// Clear removes all history items.
func (s *Service) Clear() error {
	return s.db.ClearHistory()
}

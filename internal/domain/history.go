package domain

// HistoryStatus is the recorded outcome of a past project.
type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "completed"
	HistoryFailed    HistoryStatus = "failed"
	HistoryPending   HistoryStatus = "pending"
)

// DeliverableRef is the name/type summary kept in history. The artifact
// content itself is not retained.
type DeliverableRef struct {
	Type DeliverableType `json:"type"`
	Name string          `json:"name"`
}

// HistoryItem is a completed project copied into the history list at
// release time. It has an independent lifecycle from the live project and
// is never referenced again by the engine.
type HistoryItem struct {
	ID           string           `json:"id"`
	Prompt       string           `json:"prompt"`
	Status       HistoryStatus    `json:"status"`
	Timestamp    string           `json:"timestamp"` // display string
	Cost         float64          `json:"cost"`
	Deliverables []DeliverableRef `json:"deliverables"`
}

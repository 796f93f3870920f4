// Package domain holds the core marketplace types shared by every layer.
// A Project flows submit → analyze → execute → review → release, with the
// payment held in simulated escrow until the user approves the deliverables.
package domain

import "time"

// ─── Agents ─────────────────────────────────────────────────────────────────

// AgentStatus is a display hint only; agents never transition under load.
type AgentStatus string

const (
	AgentIdle    AgentStatus = "idle"
	AgentBusy    AgentStatus = "busy"
	AgentOffline AgentStatus = "offline"
)

// Agent is a named, fixed-cost simulated worker role.
type Agent struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Icon      string      `json:"icon"`
	Cost      float64     `json:"cost"` // HYPER per use, >= 0
	Status    AgentStatus `json:"status"`
	Specialty string      `json:"specialty"`
}

// FallbackAgents is the hard-coded roster used whenever the backend agent
// list is unavailable or empty. Order matters: transaction breakdowns and
// per-agent pipeline stages follow agent-definition order.
func FallbackAgents() []Agent {
	return []Agent{
		{ID: "designbot", Name: "DesignBot", Icon: "🎨", Cost: 50, Status: AgentIdle, Specialty: "Logo & Graphics"},
		{ID: "copybot", Name: "CopyBot", Icon: "📝", Cost: 20, Status: AgentIdle, Specialty: "Professional Copywriting"},
	}
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

// TaskStatus tracks a pipeline task's lifecycle.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Well-known task roles rendered as feed prefixes.
const (
	RoleManager = "MANAGER"
	RoleEscrow  = "ESCROW"
)

// Task is one entry in a project's execution feed. Tasks are appended as
// the pipeline advances and mutated in place; they are never removed.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	Status      TaskStatus `json:"status"`
	Progress    int        `json:"progress,omitempty"` // 0–100
}

// ─── Deliverables ───────────────────────────────────────────────────────────

// DeliverableType classifies a produced artifact.
type DeliverableType string

const (
	DeliverableImage    DeliverableType = "image"
	DeliverableText     DeliverableType = "text"
	DeliverableMarkdown DeliverableType = "markdown"
	DeliverableFile     DeliverableType = "file"
)

// Deliverable is an artifact produced by an agent. Immutable once created.
// Content is raw text, or a base64/data-URI payload for images.
type Deliverable struct {
	ID       string            `json:"id"`
	Type     DeliverableType   `json:"type"`
	Name     string            `json:"name"`
	Content  string            `json:"content"`
	Agent    string            `json:"agent,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Normalize maps markdown deliverables to text for viewers that only
// distinguish image vs text.
func (d Deliverable) Normalize() Deliverable {
	if d.Type == DeliverableMarkdown {
		d.Type = DeliverableText
	}
	return d
}

// ─── Transactions ───────────────────────────────────────────────────────────

// BurnFeeRate is the fixed share of the total burned at release time.
// The fee is deducted from the released amount, never added to the charge.
const BurnFeeRate = 0.05

// TransactionStatus tracks the escrow payment lifecycle.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxLocked    TransactionStatus = "locked"
	TxCompleted TransactionStatus = "completed"
)

// BreakdownEntry is one agent's share of a transaction.
type BreakdownEntry struct {
	Agent  string  `json:"agent"`
	Amount float64 `json:"amount"`
}

// Transaction is the cost record escrowed for a project.
// Invariant: Total == sum of breakdown amounts at creation.
type Transaction struct {
	ID        string            `json:"id"`
	Total     float64           `json:"total"`
	Breakdown []BreakdownEntry  `json:"breakdown"`
	BurnFee   float64           `json:"burn_fee"`
	Status    TransactionStatus `json:"status"`
	TxHash    string            `json:"tx_hash,omitempty"`
}

// NewTransaction prices a transaction from a breakdown. The burn fee is
// derived from the total at the fixed rate.
func NewTransaction(id string, breakdown []BreakdownEntry) Transaction {
	var total float64
	for _, b := range breakdown {
		total += b.Amount
	}
	return Transaction{
		ID:        id,
		Total:     total,
		Breakdown: breakdown,
		BurnFee:   total * BurnFeeRate,
		Status:    TxPending,
	}
}

// Released is the amount paid out to agents after the burn fee.
func (t Transaction) Released() float64 {
	return t.Total - t.BurnFee
}

// BreakdownSum returns the sum of all breakdown amounts.
func (t Transaction) BreakdownSum() float64 {
	var sum float64
	for _, b := range t.Breakdown {
		sum += b.Amount
	}
	return sum
}

// ─── Projects ───────────────────────────────────────────────────────────────

// ProjectStatus tracks the project lifecycle. Review is entered once every
// task completes; completed only by explicit user approval.
type ProjectStatus string

const (
	ProjectAnalyzing  ProjectStatus = "analyzing"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectReview     ProjectStatus = "review"
	ProjectCompleted  ProjectStatus = "completed"
)

// Project is one unit of marketplace work. Exactly one project is active
// in a client at a time.
type Project struct {
	ID           string        `json:"id"`
	UserPrompt   string        `json:"user_prompt"`
	Status       ProjectStatus `json:"status"`
	Tasks        []Task        `json:"tasks"`
	Deliverables []Deliverable `json:"deliverables"`
	Transaction  Transaction   `json:"transaction"`
	CreatedAt    time.Time     `json:"created_at"`
}

// AllTasksCompleted reports whether every task has reached completed.
func (p *Project) AllTasksCompleted() bool {
	if len(p.Tasks) == 0 {
		return false
	}
	for _, t := range p.Tasks {
		if t.Status != TaskCompleted {
			return false
		}
	}
	return true
}

// TaskByID returns a pointer into the task list, or nil.
func (p *Project) TaskByID(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

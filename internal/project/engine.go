// Package project implements the lifecycle and escrow engine: one active
// project flowing analyzing → in-progress → review, with the payment held
// in wallet escrow until the user approves or rejects the deliverables.
package project

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hypertask-network/hypertask/internal/backend"
	"github.com/hypertask-network/hypertask/internal/domain"
	"github.com/hypertask-network/hypertask/internal/history"
	"github.com/hypertask-network/hypertask/internal/logbuf"
	"github.com/hypertask-network/hypertask/internal/metrics"
	"github.com/hypertask-network/hypertask/internal/wallet"
)

// Canned demo deliverables used when the backend cannot execute. The
// placeholder logo is a self-contained SVG data URI.
const (
	demoLogoDataURI = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHdpZHRoPSIyNTYiIGhlaWdodD0iMjU2Ij48cmVjdCB3aWR0aD0iMjU2IiBoZWlnaHQ9IjI1NiIgZmlsbD0iIzFhMWEyZSIvPjxjaXJjbGUgY3g9IjEyOCIgY3k9IjEwOCIgcj0iNTYiIGZpbGw9IiM2YzVjZTciLz48dGV4dCB4PSIxMjgiIHk9IjIwMCIgZm9udC1mYW1pbHk9InNhbnMtc2VyaWYiIGZvbnQtc2l6ZT0iMjQiIGZpbGw9IiNmZmYiIHRleHQtYW5jaG9yPSJtaWRkbGUiPkhZUEVSPC90ZXh0Pjwvc3ZnPg=="
	demoSlogan      = "Innovation Delivered. Excellence Guaranteed."
)

// Config tunes the execution pipeline.
type Config struct {
	// StageDelay is the pause between pipeline stages. Zero runs the
	// pipeline as fast as the backend allows.
	StageDelay time.Duration
}

// Engine owns the single active project and the release gate. All
// mutation goes through its operations.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	client  *backend.Client
	wallet  *wallet.Service
	history *history.Service
	logs    *logbuf.Buffer

	current         *domain.Project
	paymentReleased bool
	banner          string

	runCancel context.CancelFunc
	runDone   chan struct{}

	observers map[int]chan domain.Project
	nextObs   int
}

// NewEngine wires the engine to its collaborators. logs may be nil.
func NewEngine(cfg Config, client *backend.Client, w *wallet.Service, h *history.Service, logs *logbuf.Buffer) *Engine {
	if logs == nil {
		logs = logbuf.New(nil, false)
	}
	return &Engine{
		cfg:       cfg,
		client:    client,
		wallet:    w,
		history:   h,
		logs:      logs,
		observers: make(map[int]chan domain.Project),
	}
}

// Roster returns the agent roster: the backend list when reachable and
// non-empty, the fixed fallback pair otherwise.
func (e *Engine) Roster(ctx context.Context) []domain.Agent {
	agents, err := e.client.Agents(ctx)
	if err != nil || len(agents) == 0 {
		return domain.FallbackAgents()
	}
	return agents
}

// StartProject validates the prompt, prices the transaction from the
// roster, locks the escrow, and dispatches the execution pipeline in the
// background. conversationID may be empty for the direct path.
func (e *Engine) StartProject(ctx context.Context, prompt, conversationID string) (domain.Project, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.Project{}, domain.ErrEmptyPrompt
	}

	roster := e.Roster(ctx)

	e.mu.Lock()
	if e.active() {
		e.mu.Unlock()
		return domain.Project{}, domain.ErrProjectActive
	}

	breakdown := make([]domain.BreakdownEntry, 0, len(roster))
	for _, a := range roster {
		breakdown = append(breakdown, domain.BreakdownEntry{Agent: a.Name, Amount: a.Cost})
	}
	tx := domain.NewTransaction(uuid.NewString(), breakdown)
	tx.Status = domain.TxLocked

	p := &domain.Project{
		ID:          uuid.NewString(),
		UserPrompt:  prompt,
		Status:      domain.ProjectAnalyzing,
		Transaction: tx,
		CreatedAt:   time.Now(),
		Tasks: []domain.Task{{
			ID:         uuid.NewString(),
			Title:      "Analyzing request",
			AssignedTo: domain.RoleManager,
			Status:     domain.TaskInProgress,
		}},
	}

	if _, err := e.wallet.Lock(tx.Total); err != nil {
		e.mu.Unlock()
		return domain.Project{}, err
	}

	e.current = p
	e.paymentReleased = false
	e.banner = ""

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.runCancel = cancel
	e.runDone = done
	snapshot := *p
	e.mu.Unlock()

	metrics.ProjectsStarted.Inc()
	metrics.EscrowLocked.Set(tx.Total)
	e.logs.Infof("Project", "dispatched %s (%.2f HYPER escrowed)", p.ID, tx.Total)
	e.notify()

	go e.run(runCtx, done, roster, prompt, conversationID)
	return snapshot, nil
}

// active must be called with mu held.
func (e *Engine) active() bool {
	return e.current != nil && e.current.Status != domain.ProjectCompleted
}

// ─── Pipeline ───────────────────────────────────────────────────────────────

// run drives the staged pipeline. Stages execute in a fixed order and
// are never rolled back; cancellation stops between stages.
func (e *Engine) run(ctx context.Context, done chan struct{}, roster []domain.Agent, prompt, conversationID string) {
	defer close(done)

	stages := []struct {
		name string
		fn   func(context.Context)
	}{
		{"escrow", e.stageEscrow},
		{"manager", e.stageManager},
		{"execute", func(ctx context.Context) { e.stageExecute(ctx, prompt, conversationID) }},
		{"agents", func(ctx context.Context) { e.stageAgents(ctx, roster) }},
		{"review", e.stageReview},
	}

	for _, stage := range stages {
		if !e.pause(ctx) {
			return
		}
		start := time.Now()
		stage.fn(ctx)
		metrics.PipelineStageSeconds.WithLabelValues(stage.name).Observe(time.Since(start).Seconds())
		e.notify()
	}
}

// pause waits the configured inter-stage delay. Returns false when the
// pipeline was cancelled.
func (e *Engine) pause(ctx context.Context) bool {
	if e.cfg.StageDelay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(e.cfg.StageDelay):
		return true
	}
}

func (e *Engine) stageEscrow(context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return
	}
	e.current.Tasks = append(e.current.Tasks, domain.Task{
		ID:         uuid.NewString(),
		Title:      fmt.Sprintf("Locked %.2f HYPER in escrow", e.current.Transaction.Total),
		AssignedTo: domain.RoleEscrow,
		Status:     domain.TaskCompleted,
		Progress:   100,
	})
}

func (e *Engine) stageManager(context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return
	}
	e.current.Tasks[0].Status = domain.TaskCompleted
	e.current.Tasks[0].Progress = 100
	e.current.Status = domain.ProjectInProgress
}

// stageExecute calls the backend and ingests the deliverable bundle.
// Any failure falls back to the canned demo output; execution never
// fails outright and is never retried.
func (e *Engine) stageExecute(ctx context.Context, prompt, conversationID string) {
	start := time.Now()
	var result backend.ExecutionResult
	var err error
	if conversationID != "" {
		result, err = e.client.Execute(ctx, conversationID)
	} else {
		result, err = e.client.ExecuteDirect(ctx, prompt, nil)
	}
	metrics.BackendLatency.WithLabelValues("/execute").Observe(time.Since(start).Seconds())

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return
	}

	if err != nil {
		metrics.BackendFallbacks.Inc()
		e.banner = "Agent service unavailable — showing demo deliverables."
		e.logs.Warn("Project", "execute failed, using demo deliverables: "+err.Error())
		e.current.Deliverables = demoDeliverables()
		return
	}

	for _, d := range result.Deliverables {
		d = d.Normalize()
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		e.current.Deliverables = append(e.current.Deliverables, d)
	}

	// Adopt the server-priced transaction, deriving the fee when the
	// server omitted it, and move the escrow lock to the real total.
	tx := *result.Transaction
	if tx.ID == "" {
		tx.ID = e.current.Transaction.ID
	}
	if tx.BurnFee == 0 && tx.Total > 0 {
		tx.BurnFee = tx.Total * domain.BurnFeeRate
	}
	tx.Status = domain.TxLocked
	if tx.Total != e.current.Transaction.Total {
		e.relock(tx.Total)
	}
	e.current.Transaction = tx
}

// relock must be called with mu held.
func (e *Engine) relock(total float64) {
	if _, err := e.wallet.Refund(); err != nil {
		e.logs.Error("Wallet", "escrow refund failed: "+err.Error())
		return
	}
	if _, err := e.wallet.Lock(total); err != nil {
		e.logs.Error("Wallet", "escrow relock failed: "+err.Error())
		return
	}
	metrics.EscrowLocked.Set(total)
}

// stageAgents appends one completed task per roster agent, in
// agent-definition order, attaching that agent's deliverable.
func (e *Engine) stageAgents(ctx context.Context, roster []domain.Agent) {
	for i, agent := range roster {
		if i > 0 && !e.pause(ctx) {
			return
		}
		e.mu.Lock()
		if e.current == nil {
			e.mu.Unlock()
			return
		}
		task := domain.Task{
			ID:         uuid.NewString(),
			Title:      agent.Specialty,
			AssignedTo: agent.Name,
			Status:     domain.TaskCompleted,
			Progress:   100,
		}
		if d := e.deliverableFor(agent.Name, i); d != nil {
			task.Description = "Delivered " + d.Name
		}
		e.current.Tasks = append(e.current.Tasks, task)
		e.mu.Unlock()
		e.notify()
	}
}

// deliverableFor matches a deliverable to an agent by attribution,
// falling back to roster position. Must be called with mu held.
func (e *Engine) deliverableFor(agentName string, idx int) *domain.Deliverable {
	for i := range e.current.Deliverables {
		if strings.EqualFold(e.current.Deliverables[i].Agent, agentName) {
			return &e.current.Deliverables[i]
		}
	}
	if idx < len(e.current.Deliverables) {
		return &e.current.Deliverables[idx]
	}
	return nil
}

func (e *Engine) stageReview(context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return
	}
	e.current.Status = domain.ProjectReview
	e.logs.Info("Project", "deliverables ready for review")
}

func demoDeliverables() []domain.Deliverable {
	return []domain.Deliverable{
		{
			ID:      uuid.NewString(),
			Type:    domain.DeliverableImage,
			Name:    "brand_logo.svg",
			Content: demoLogoDataURI,
			Agent:   "DesignBot",
		},
		{
			ID:      uuid.NewString(),
			Type:    domain.DeliverableText,
			Name:    "brand_slogan.txt",
			Content: demoSlogan,
			Agent:   "CopyBot",
		},
	}
}

// ─── Review Gate ────────────────────────────────────────────────────────────

// Approve releases the escrowed payment. Only valid in review; a second
// call is a no-op for state, history, and balance.
func (e *Engine) Approve() error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return domain.ErrNoActiveProject
	}
	if e.current.Status != domain.ProjectReview {
		e.mu.Unlock()
		return domain.ErrNotInReview
	}

	// Mark completed under the lock so a concurrent Approve hits
	// ErrNotInReview rather than a double charge.
	p := e.current
	p.Status = domain.ProjectCompleted
	p.Transaction.Status = domain.TxCompleted
	total := p.Transaction.Total
	fee := p.Transaction.BurnFee
	e.mu.Unlock()

	w, err := e.wallet.ReleaseDeduct(total, "Project payment: "+truncate(p.UserPrompt, 40))
	if err != nil {
		// Back to review with escrow intact; the release can be retried.
		e.mu.Lock()
		p.Status = domain.ProjectReview
		p.Transaction.Status = domain.TxLocked
		e.mu.Unlock()
		return fmt.Errorf("release payment: %w", err)
	}

	e.mu.Lock()
	e.paymentReleased = true
	e.mu.Unlock()

	e.wallet.RecordFee(fee, "Burn fee (5%)")

	if _, err := e.history.Record(p, domain.HistoryCompleted); err != nil {
		e.logs.Error("History", "record failed: "+err.Error())
	}

	metrics.ProjectsCompleted.Inc()
	metrics.FeesBurned.Add(fee)
	metrics.WalletBalance.Set(w.Total)
	metrics.EscrowLocked.Set(0)
	e.logs.Success("Project", fmt.Sprintf("payment released: %.2f HYPER (%.2f burned)", total, fee))
	e.notify()
	return nil
}

// Reject discards the active project and refunds the escrow in full.
// Valid at any point before approval.
func (e *Engine) Reject() error {
	e.mu.Lock()
	if !e.active() {
		e.mu.Unlock()
		return domain.ErrNoActiveProject
	}
	if e.runCancel != nil {
		e.runCancel()
	}
	e.current = nil
	e.paymentReleased = false
	e.banner = ""
	e.mu.Unlock()

	w, err := e.wallet.Refund()
	if err != nil {
		return fmt.Errorf("refund escrow: %w", err)
	}

	metrics.ProjectsRejected.Inc()
	metrics.WalletBalance.Set(w.Total)
	metrics.EscrowLocked.Set(0)
	e.logs.Info("Project", "rejected, escrow refunded")
	e.notify()
	return nil
}

// RequestRevision queues a rework pass. Rework itself is not built yet:
// the project returns to in-progress with an acknowledgment task and
// stays there until rejected or the feature lands.
func (e *Engine) RequestRevision() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return domain.ErrNoActiveProject
	}
	if e.current.Status != domain.ProjectReview {
		return domain.ErrNotInReview
	}
	e.current.Status = domain.ProjectInProgress
	e.current.Tasks = append(e.current.Tasks, domain.Task{
		ID:         uuid.NewString(),
		Title:      "Revision queued",
		AssignedTo: domain.RoleManager,
		Status:     domain.TaskInProgress,
	})
	e.banner = "Revision queued — rework is not available yet."
	return nil
}

// ─── Accessors ──────────────────────────────────────────────────────────────

// Current returns a snapshot of the active project.
func (e *Engine) Current() (domain.Project, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return domain.Project{}, false
	}
	return cloneProject(e.current), true
}

// PaymentReleased reports whether the last project's payment was
// released.
func (e *Engine) PaymentReleased() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paymentReleased
}

// Banner returns the current advisory banner, or "".
func (e *Engine) Banner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.banner
}

// Wait blocks until the background pipeline finishes. Used by the CLI
// and tests; returns immediately when nothing is running.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.runDone
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// ─── Observers ──────────────────────────────────────────────────────────────

// Subscribe registers an observer for project snapshots. Slow observers
// drop snapshots rather than blocking the pipeline.
func (e *Engine) Subscribe() (<-chan domain.Project, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextObs
	e.nextObs++
	ch := make(chan domain.Project, 16)
	e.observers[id] = ch
	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.observers[id]; ok {
			delete(e.observers, id)
			close(c)
		}
	}
}

func (e *Engine) notify() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return
	}
	snapshot := cloneProject(e.current)
	for _, ch := range e.observers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func cloneProject(p *domain.Project) domain.Project {
	cp := *p
	cp.Tasks = append([]domain.Task(nil), p.Tasks...)
	cp.Deliverables = append([]domain.Deliverable(nil), p.Deliverables...)
	cp.Transaction.Breakdown = append([]domain.BreakdownEntry(nil), p.Transaction.Breakdown...)
	return cp
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

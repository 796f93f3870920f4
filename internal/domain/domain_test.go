package domain

import (
	"math"
	"testing"
)

// ─── Transaction Tests ──────────────────────────────────────────────────────

func TestNewTransaction_TotalMatchesBreakdown(t *testing.T) {
	tx := NewTransaction("tx-1", []BreakdownEntry{
		{Agent: "DesignBot", Amount: 50},
		{Agent: "CopyBot", Amount: 20},
	})

	if tx.Total != 70 {
		t.Errorf("Total = %v, want 70", tx.Total)
	}
	if tx.Total != tx.BreakdownSum() {
		t.Errorf("Total %v != breakdown sum %v", tx.Total, tx.BreakdownSum())
	}
}

func TestNewTransaction_BurnFee(t *testing.T) {
	tx := NewTransaction("tx-1", []BreakdownEntry{
		{Agent: "DesignBot", Amount: 50},
		{Agent: "CopyBot", Amount: 20},
	})

	if tx.BurnFee != 3.5 {
		t.Errorf("BurnFee = %v, want 3.5", tx.BurnFee)
	}
	if got := tx.Released(); got != 66.5 {
		t.Errorf("Released() = %v, want 66.5", got)
	}
}

func TestNewTransaction_Empty(t *testing.T) {
	tx := NewTransaction("tx-1", nil)
	if tx.Total != 0 || tx.BurnFee != 0 {
		t.Errorf("empty breakdown: total=%v burn=%v, want 0/0", tx.Total, tx.BurnFee)
	}
}

// ─── Wallet Tests ───────────────────────────────────────────────────────────

func TestWallet_Available(t *testing.T) {
	tests := []struct {
		name  string
		w     Wallet
		avail float64
	}{
		{"unlocked", Wallet{Total: 500, Locked: 0}, 500},
		{"partial lock", Wallet{Total: 500, Locked: 70}, 430},
		{"fully locked", Wallet{Total: 70, Locked: 70}, 0},
		{"over-locked clamps", Wallet{Total: 50, Locked: 70}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Available(); got != tt.avail {
				t.Errorf("Available() = %v, want %v", got, tt.avail)
			}
		})
	}
}

func TestWallet_Clamp(t *testing.T) {
	w := Wallet{Total: 50, Locked: 70}
	w.Clamp()
	if w.Locked != 50 {
		t.Errorf("Locked after clamp = %v, want 50", w.Locked)
	}

	w = Wallet{Total: -10, Locked: -5}
	w.Clamp()
	if w.Total != 0 || w.Locked != 0 {
		t.Errorf("negative wallet after clamp = %+v, want zeroes", w)
	}
}

// ─── Project Tests ──────────────────────────────────────────────────────────

func TestProject_AllTasksCompleted(t *testing.T) {
	p := &Project{}
	if p.AllTasksCompleted() {
		t.Error("empty task list should not count as completed")
	}

	p.Tasks = []Task{
		{ID: "t1", Status: TaskCompleted},
		{ID: "t2", Status: TaskInProgress},
	}
	if p.AllTasksCompleted() {
		t.Error("in-progress task should block completion")
	}

	p.Tasks[1].Status = TaskCompleted
	if !p.AllTasksCompleted() {
		t.Error("all tasks completed, want true")
	}
}

func TestDeliverable_Normalize(t *testing.T) {
	d := Deliverable{Type: DeliverableMarkdown}
	if got := d.Normalize().Type; got != DeliverableText {
		t.Errorf("markdown normalized to %q, want text", got)
	}
	d = Deliverable{Type: DeliverableImage}
	if got := d.Normalize().Type; got != DeliverableImage {
		t.Errorf("image normalized to %q, want image", got)
	}
}

func TestWalletTransaction_Signed(t *testing.T) {
	if got := (WalletTransaction{Type: WalletDeposit, Amount: 25.5}).Signed(); got != 25.5 {
		t.Errorf("deposit Signed() = %v, want 25.5", got)
	}
	if got := (WalletTransaction{Type: WalletFee, Amount: 70}).Signed(); got != -70 {
		t.Errorf("fee Signed() = %v, want -70", got)
	}
}

func TestFallbackAgents(t *testing.T) {
	agents := FallbackAgents()
	if len(agents) != 2 {
		t.Fatalf("FallbackAgents() = %d agents, want 2", len(agents))
	}
	if agents[0].Name != "DesignBot" || agents[0].Cost != 50 {
		t.Errorf("first agent = %s/%v, want DesignBot/50", agents[0].Name, agents[0].Cost)
	}
	if agents[1].Name != "CopyBot" || agents[1].Cost != 20 {
		t.Errorf("second agent = %s/%v, want CopyBot/20", agents[1].Name, agents[1].Cost)
	}
	var total float64
	for _, a := range agents {
		total += a.Cost
	}
	if math.Abs(total-70) > 1e-9 {
		t.Errorf("roster cost = %v, want 70", total)
	}
}

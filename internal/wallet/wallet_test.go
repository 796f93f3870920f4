package wallet

import (
	"math"
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

	svc, err := NewService(db, 500)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc
}

func TestNewService_SeedsStartingBalance(t *testing.T) {
	svc := newTestService(t)

	w := svc.Balance()
	if w.Total != 500 || w.Locked != 0 {
		t.Errorf("fresh wallet = %+v, want total 500 locked 0", w)
	}
}

func TestBalance_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(dir)
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	svc, err := NewService(db, 500)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	if _, err := svc.Deposit(100); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if _, err := svc.Lock(70); err != nil {
		t.Fatalf("Lock() error: %v", err)
	}
	db.Close()

	db2, err := store.Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db2.Close()

	// Seed value must not override the persisted balance.
	svc2, err := NewService(db2, 500)
	if err != nil {
		t.Fatalf("NewService() after reopen error: %v", err)
	}
	w := svc2.Balance()
	if w.Total != 600 || w.Locked != 70 {
		t.Errorf("reloaded wallet = %+v, want total 600 locked 70", w)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"100", 100, false},
		{"0.5", 0.5, false},
		{"abc", 0, true},
		{"-5", 0, true},
		{"0", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		if tt.wantErr {
			if err != domain.ErrInvalidAmount {
				t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
		}
	}
}

func TestDeposit_RejectsInvalid(t *testing.T) {
	svc := newTestService(t)

	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := svc.Deposit(amount); err != domain.ErrInvalidAmount {
			t.Errorf("Deposit(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if w := svc.Balance(); w.Total != 500 {
		t.Errorf("balance changed by rejected deposits: %+v", w)
	}
}

func TestDeposit_CreditsAndRecords(t *testing.T) {
	svc := newTestService(t)

	w, err := svc.Deposit(250)
	if err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if w.Total != 750 {
		t.Errorf("total = %v, want 750", w.Total)
	}

	txs, err := svc.Transactions(10)
	if err != nil {
		t.Fatalf("Transactions() error: %v", err)
	}
	if len(txs) != 1 || txs[0].Type != domain.WalletDeposit || txs[0].Amount != 250 {
		t.Errorf("ledger = %+v, want one deposit of 250", txs)
	}
	if txs[0].Signed() != 250 {
		t.Errorf("Signed() = %v, want +250", txs[0].Signed())
	}
}

func TestClaim(t *testing.T) {
	svc := newTestService(t)

	w, err := svc.Claim()
	if err != nil {
		t.Fatalf("Claim() error: %v", err)
	}
	if w.Total != 1000 {
		t.Errorf("total after claim = %v, want 1000", w.Total)
	}
}

func TestLock_InsufficientFunds(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Lock(600); err != domain.ErrInsufficientFunds {
		t.Errorf("Lock(600) error = %v, want ErrInsufficientFunds", err)
	}
	if w := svc.Balance(); w.Locked != 0 {
		t.Errorf("failed lock left escrow: %+v", w)
	}
}

func TestLockRefund(t *testing.T) {
	svc := newTestService(t)

	w, err := svc.Lock(70)
	if err != nil {
		t.Fatalf("Lock() error: %v", err)
	}
	if w.Total != 500 || w.Locked != 70 || w.Available() != 430 {
		t.Errorf("after lock = %+v, want total 500 locked 70", w)
	}

	w, err = svc.Refund()
	if err != nil {
		t.Fatalf("Refund() error: %v", err)
	}
	if w.Total != 500 || w.Locked != 0 {
		t.Errorf("after refund = %+v, want total 500 locked 0", w)
	}
}

func TestReleaseDeduct(t *testing.T) {
	svc := newTestService(t)
	svc.Lock(70)

	w, err := svc.ReleaseDeduct(70, "Project payment")
	if err != nil {
		t.Fatalf("ReleaseDeduct() error: %v", err)
	}
	if w.Total != 430 || w.Locked != 0 {
		t.Errorf("after release = %+v, want total 430 locked 0", w)
	}
}

func TestReleaseDeduct_ClampsAtZero(t *testing.T) {
	svc := newTestService(t)

	w, err := svc.ReleaseDeduct(9999, "Overcharge")
	if err != nil {
		t.Fatalf("ReleaseDeduct() error: %v", err)
	}
	if w.Total != 0 || w.Locked != 0 {
		t.Errorf("after overdraw = %+v, want zeroed wallet", w)
	}
}

// Every mutation must leave the in-memory split matching the persisted
// one; a failed persist rolls the memory side back.
func TestRefund_PersistFailureRollsBack(t *testing.T) {
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	svc, err := NewService(db, 500)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	if _, err := svc.Lock(70); err != nil {
		t.Fatalf("Lock() error: %v", err)
	}
	db.Close() // persists fail from here on

	if _, err := svc.Refund(); err == nil {
		t.Fatal("Refund() succeeded with a closed store")
	}
	if w := svc.Balance(); w.Total != 500 || w.Locked != 70 {
		t.Errorf("failed refund mutated the wallet: %+v", w)
	}
}

func TestReleaseDeduct_PersistFailureRollsBack(t *testing.T) {
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	svc, err := NewService(db, 500)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	if _, err := svc.Lock(70); err != nil {
		t.Fatalf("Lock() error: %v", err)
	}
	db.Close()

	if _, err := svc.ReleaseDeduct(70, "Project payment"); err == nil {
		t.Fatal("ReleaseDeduct() succeeded with a closed store")
	}
	if w := svc.Balance(); w.Total != 500 || w.Locked != 70 {
		t.Errorf("failed release mutated the wallet: %+v", w)
	}
}

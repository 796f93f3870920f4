package domain

import "time"

// Wallet is the simulated HYPER balance split. Locked funds are escrowed
// for the active project; no real custody transfer ever occurs.
// Invariant: 0 <= Locked <= Total after every operation.
type Wallet struct {
	Total  float64 `json:"total"`
	Locked float64 `json:"locked"`
}

// Available is the spendable portion, clamped so a violated invariant
// never surfaces as a negative balance.
func (w Wallet) Available() float64 {
	avail := w.Total - w.Locked
	if avail < 0 {
		return 0
	}
	return avail
}

// Clamp restores the wallet invariant in place.
func (w *Wallet) Clamp() {
	if w.Total < 0 {
		w.Total = 0
	}
	if w.Locked < 0 {
		w.Locked = 0
	}
	if w.Locked > w.Total {
		w.Locked = w.Total
	}
}

// ─── Wallet Transactions ────────────────────────────────────────────────────

// WalletTxType classifies a wallet ledger entry.
type WalletTxType string

const (
	WalletDeposit    WalletTxType = "deposit"
	WalletWithdrawal WalletTxType = "withdrawal"
	WalletFee        WalletTxType = "fee"
	WalletReward     WalletTxType = "reward"
)

// WalletTxStatus tracks a wallet transaction.
type WalletTxStatus string

const (
	WalletTxCompleted WalletTxStatus = "completed"
	WalletTxPending   WalletTxStatus = "pending"
	WalletTxFailed    WalletTxStatus = "failed"
)

// WalletTransaction is one entry in the wallet history, newest first.
type WalletTransaction struct {
	ID          string         `json:"id"`
	Type        WalletTxType   `json:"type"`
	Amount      float64        `json:"amount"`
	Timestamp   time.Time      `json:"timestamp"`
	Description string         `json:"description"`
	Status      WalletTxStatus `json:"status"`
}

// Signed returns the amount with the sign conventionally shown in the
// wallet history: credits positive, debits negative.
func (t WalletTransaction) Signed() float64 {
	switch t.Type {
	case WalletDeposit, WalletReward:
		return t.Amount
	default:
		return -t.Amount
	}
}

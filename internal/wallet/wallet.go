// Package wallet manages the user balance and escrow locks.
// Available = Total - Locked at all times; every mutation persists
// the balance split so escrow survives a restart.
package wallet

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hypertask-network/hypertask/internal/domain"
	"github.com/hypertask-network/hypertask/internal/store"
)

// ClaimReward is the fixed top-up granted by Claim.
const ClaimReward = 500.0

// Service manages the wallet economy.
type Service struct {
	mu sync.Mutex
	db *store.DB
	w  domain.Wallet
}

// NewService loads the persisted balance, seeding startingBalance on
// first run.
func NewService(db *store.DB, startingBalance float64) (*Service, error) {
	w, ok, err := db.LoadWallet()
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	if !ok {
		w = domain.Wallet{Total: startingBalance}
		if err := db.SaveWallet(w); err != nil {
			return nil, fmt.Errorf("seed wallet: %w", err)
		}
	}
	return &Service{db: db, w: w}, nil
}

// Balance returns the current balance split.
func (s *Service) Balance() domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w
}

// ParseAmount converts user input into a deposit amount. Rejects
// anything that is not a finite positive number.
func ParseAmount(input string) (float64, error) {
	amount, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, domain.ErrInvalidAmount
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return amount, nil
}

// Deposit credits the total balance and records a ledger entry.
func (s *Service) Deposit(amount float64) (domain.Wallet, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return s.Balance(), domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.w.Total += amount
	if err := s.persist(); err != nil {
		s.w.Total -= amount
		return s.w, err
	}
	s.record(domain.WalletDeposit, amount, "Deposit")
	return s.w, nil
}

// Claim grants the fixed demo reward.
func (s *Service) Claim() (domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w.Total += ClaimReward
	if err := s.persist(); err != nil {
		s.w.Total -= ClaimReward
		return s.w, err
	}
	s.record(domain.WalletReward, ClaimReward, "Reward claim")
	return s.w, nil
}

// Lock places amount in escrow. The locked amount still counts toward
// Total; only Available shrinks.
func (s *Service) Lock(amount float64) (domain.Wallet, error) {
	if amount <= 0 {
		return s.Balance(), domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w.Available() < amount {
		return s.w, domain.ErrInsufficientFunds
	}
	s.w.Locked += amount
	if err := s.persist(); err != nil {
		s.w.Locked -= amount
		return s.w, err
	}
	return s.w, nil
}

// Refund releases the escrow lock without charging. Total is untouched.
func (s *Service) Refund() (domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.w.Locked
	s.w.Locked = 0
	if err := s.persist(); err != nil {
		s.w.Locked = prev
		return s.w, err
	}
	return s.w, nil
}

// ReleaseDeduct charges amount from the total, clamped so the balance
// never goes negative, and clears the escrow lock.
func (s *Service) ReleaseDeduct(amount float64, description string) (domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.w
	charged := math.Min(s.w.Total, math.Max(0, amount))
	s.w.Total -= charged
	s.w.Locked = 0
	s.w.Clamp()
	if err := s.persist(); err != nil {
		s.w = prev
		return s.w, err
	}
	if charged > 0 {
		s.record(domain.WalletWithdrawal, charged, description)
	}
	return s.w, nil
}

// RecordFee appends a fee ledger entry. The fee is part of the amount
// already charged by ReleaseDeduct, so the balance is untouched.
func (s *Service) RecordFee(amount float64, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(domain.WalletFee, amount, description)
}

// Transactions returns the ledger, newest first.
func (s *Service) Transactions(limit int) ([]domain.WalletTransaction, error) {
	return s.db.WalletTransactions(limit)
}

// persist must be called with mu held.
func (s *Service) persist() error {
	return s.db.SaveWallet(s.w)
}

// record appends a ledger entry with mu held. Ledger failures are not
// fatal; the balance itself is already persisted.
func (s *Service) record(typ domain.WalletTxType, amount float64, description string) {
	_ = s.db.InsertWalletTransaction(domain.WalletTransaction{
		ID:          uuid.NewString(),
		Type:        typ,
		Amount:      amount,
		Timestamp:   time.Now(),
		Description: description,
		Status:      domain.WalletTxCompleted,
	})
}

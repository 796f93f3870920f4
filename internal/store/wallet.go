package store

import (
	"strconv"
	"time"

	"github.com/hypertask-network/hypertask/internal/domain"
)

// Wallet balance keys in wallet_info.
const (
	keyWalletTotal  = "wallet_total"
	keyWalletLocked = "wallet_locked"
)

// SaveWallet persists the balance split.
func (d *DB) SaveWallet(w domain.Wallet) error {
	if err := d.SetInfo(keyWalletTotal, strconv.FormatFloat(w.Total, 'f', -1, 64)); err != nil {
		return err
	}
	return d.SetInfo(keyWalletLocked, strconv.FormatFloat(w.Locked, 'f', -1, 64))
}

// LoadWallet returns the persisted balance split. A missing or unparsable
// value reads as zero; ok is false when no balance was ever saved.
func (d *DB) LoadWallet() (w domain.Wallet, ok bool, err error) {
	total, err := d.GetInfo(keyWalletTotal)
	if err != nil {
		return w, false, err
	}
	if total == "" {
		return w, false, nil
	}
	w.Total, _ = strconv.ParseFloat(total, 64)

	locked, err := d.GetInfo(keyWalletLocked)
	if err != nil {
		return w, false, err
	}
	w.Locked, _ = strconv.ParseFloat(locked, 64)

	w.Clamp()
	return w, true, nil
}

// InsertWalletTransaction appends a wallet ledger entry.
func (d *DB) InsertWalletTransaction(tx domain.WalletTransaction) error {
	_, err := d.db.Exec(
		`INSERT INTO wallet_transactions (id, type, amount, timestamp, description, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), tx.Amount, tx.Timestamp.UnixMilli(), tx.Description, string(tx.Status),
	)
	return err
}

// WalletTransactions returns ledger entries, newest first.
func (d *DB) WalletTransactions(limit int) ([]domain.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(
		`SELECT id, type, amount, timestamp, description, status
		 FROM wallet_transactions ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		tx, err := scanWalletTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanWalletTx(s scanner) (domain.WalletTransaction, error) {
	var tx domain.WalletTransaction
	var typ, status string
	var ts int64

	if err := s.Scan(&tx.ID, &typ, &tx.Amount, &ts, &tx.Description, &status); err != nil {
		return tx, err
	}
	tx.Type = domain.WalletTxType(typ)
	tx.Status = domain.WalletTxStatus(status)
	tx.Timestamp = time.UnixMilli(ts)
	return tx, nil
}

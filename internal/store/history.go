package store

import (
	"encoding/json"

	"github.com/hypertask-network/hypertask/internal/domain"
)

// InsertHistoryItem appends a history row. The seq column preserves
// insertion order independently of the display timestamp.
func (d *DB) InsertHistoryItem(item domain.HistoryItem) error {
	refs, err := json.Marshal(item.Deliverables)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		`INSERT INTO project_history (id, prompt, status, timestamp, cost, deliverables, seq)
		 VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM project_history))`,
		item.ID, item.Prompt, string(item.Status), item.Timestamp, item.Cost, string(refs),
	)
	return err
}

// ListHistory returns all history rows in insertion order. A corrupt
// deliverables column degrades to an empty list rather than an error.
func (d *DB) ListHistory() ([]domain.HistoryItem, error) {
	rows, err := d.db.Query(
		`SELECT id, prompt, status, timestamp, cost, deliverables
		 FROM project_history ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.HistoryItem
	for rows.Next() {
		var item domain.HistoryItem
		var status, refs string
		if err := rows.Scan(&item.ID, &item.Prompt, &status, &item.Timestamp, &item.Cost, &refs); err != nil {
			return nil, err
		}
		item.Status = domain.HistoryStatus(status)
		if err := json.Unmarshal([]byte(refs), &item.Deliverables); err != nil {
			item.Deliverables = nil
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteHistoryItem removes exactly one row by project id.
func (d *DB) DeleteHistoryItem(id string) error {
	result, err := d.db.Exec(`DELETE FROM project_history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrHistoryNotFound
	}
	return nil
}

// ClearHistory empties the history list.
func (d *DB) ClearHistory() error {
	_, err := d.db.Exec(`DELETE FROM project_history`)
	return err
}

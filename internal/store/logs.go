package store

// LogRecord is the persisted form of one client log entry.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Data      string `json:"data,omitempty"`
}

// InsertLogRecord appends a log row and trims the table to maxKeep rows,
// oldest first.
func (d *DB) InsertLogRecord(rec LogRecord, maxKeep int) error {
	_, err := d.db.Exec(
		`INSERT INTO client_logs (timestamp, level, category, message, data)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.Level, rec.Category, rec.Message, rec.Data,
	)
	if err != nil {
		return err
	}
	if maxKeep > 0 {
		_, err = d.db.Exec(
			`DELETE FROM client_logs WHERE id NOT IN
			 (SELECT id FROM client_logs ORDER BY id DESC LIMIT ?)`, maxKeep,
		)
	}
	return err
}

// ListLogRecords returns the most recent rows, oldest first.
func (d *DB) ListLogRecords(limit int) ([]LogRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.Query(
		`SELECT timestamp, level, category, message, COALESCE(data, '')
		 FROM client_logs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []LogRecord
	for rows.Next() {
		var r LogRecord
		if err := rows.Scan(&r.Timestamp, &r.Level, &r.Category, &r.Message, &r.Data); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	// Reverse to oldest-first for display.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, rows.Err()
}

// ClearLogRecords empties the persisted log mirror.
func (d *DB) ClearLogRecords() error {
	_, err := d.db.Exec(`DELETE FROM client_logs`)
	return err
}

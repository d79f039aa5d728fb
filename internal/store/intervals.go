package store

import (
	"database/sql"
	"fmt"
)

// AppendInterval inserts a new interval row and returns it with its ID.
func (s *Store) AppendInterval(iv Interval) (*Interval, error) {
	res, err := s.db.Exec(
		`INSERT INTO intervals (start_time, end_time, app, info, process_name, url, domain)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		iv.StartTime, iv.EndTime, iv.App, iv.Info, iv.ProcessName, iv.URL, iv.Domain,
	)
	if err != nil {
		return nil, fmt.Errorf("append interval: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetInterval(id)
}

// ExtendInterval moves only the end time of an interval forward. This is
// the merge path and must stay a single atomic update.
func (s *Store) ExtendInterval(id int64, endTime int64) error {
	res, err := s.db.Exec(`UPDATE intervals SET end_time = ? WHERE id = ?`, endTime, id)
	if err != nil {
		return fmt.Errorf("extend interval %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("extend interval %d: no such row", id)
	}
	return nil
}

func (s *Store) GetInterval(id int64) (*Interval, error) {
	iv := &Interval{}
	err := s.db.QueryRow(
		`SELECT id, start_time, end_time, app, info, process_name, url, domain
		 FROM intervals WHERE id = ?`, id,
	).Scan(&iv.ID, &iv.StartTime, &iv.EndTime, &iv.App, &iv.Info, &iv.ProcessName, &iv.URL, &iv.Domain)
	if err != nil {
		return nil, fmt.Errorf("get interval %d: %w", id, err)
	}
	return iv, nil
}

// LatestInterval returns the most recently written interval, ties broken
// by row identity. Returns (nil, nil) when the table is legitimately
// empty; an I/O error is returned as an error, never as absence.
func (s *Store) LatestInterval() (*Interval, error) {
	iv := &Interval{}
	err := s.db.QueryRow(
		`SELECT id, start_time, end_time, app, info, process_name, url, domain
		 FROM intervals ORDER BY id DESC LIMIT 1`,
	).Scan(&iv.ID, &iv.StartTime, &iv.EndTime, &iv.App, &iv.Info, &iv.ProcessName, &iv.URL, &iv.Domain)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest interval: %w", err)
	}
	return iv, nil
}

// ListIntervals returns intervals matching the filter, ordered by start
// time ascending.
func (s *Store) ListIntervals(f IntervalFilter) ([]Interval, error) {
	query := `SELECT id, start_time, end_time, app, info, process_name, url, domain FROM intervals WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, *f.From)
	}
	if f.To != nil {
		query += ` AND end_time <= ?`
		args = append(args, *f.To)
	}
	if f.Process != "" {
		query += ` AND process_name = ?`
		args = append(args, f.Process)
	}
	query += ` ORDER BY start_time, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list intervals: %w", err)
	}
	defer rows.Close()

	var intervals []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.ID, &iv.StartTime, &iv.EndTime, &iv.App, &iv.Info, &iv.ProcessName, &iv.URL, &iv.Domain); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

// IntervalsBetween returns intervals fully contained in [start, end].
func (s *Store) IntervalsBetween(start, end int64) ([]Interval, error) {
	return s.ListIntervals(IntervalFilter{From: &start, To: &end})
}

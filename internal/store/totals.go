package store

import (
	"database/sql"
	"fmt"
)

// ReplaceDayTotals swaps the day-totals table for a freshly aggregated
// window. The whole replace runs in one exclusive transaction so readers
// never observe a half-written window.
func (s *Store) ReplaceDayTotals(totals []DayTotal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace day totals: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM day_totals`); err != nil {
		return fmt.Errorf("clear day totals: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO day_totals (day, neutral, personal, work) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare day totals insert: %w", err)
	}
	defer stmt.Close()

	for _, dt := range totals {
		if _, err := stmt.Exec(dt.Day, dt.Neutral, dt.Personal, dt.Work); err != nil {
			return fmt.Errorf("insert day total %s: %w", dt.Day, err)
		}
	}
	return tx.Commit()
}

// DayTotals returns the stored window oldest-to-newest.
func (s *Store) DayTotals() ([]DayTotal, error) {
	rows, err := s.db.Query(`SELECT day, neutral, personal, work FROM day_totals ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("day totals: %w", err)
	}
	defer rows.Close()

	var totals []DayTotal
	for rows.Next() {
		var dt DayTotal
		if err := rows.Scan(&dt.Day, &dt.Neutral, &dt.Personal, &dt.Work); err != nil {
			return nil, err
		}
		totals = append(totals, dt)
	}
	return totals, rows.Err()
}

// DayTotalFor returns the totals row for one calendar day, or (nil, nil)
// when the day is not in the stored window.
func (s *Store) DayTotalFor(day string) (*DayTotal, error) {
	dt := &DayTotal{}
	err := s.db.QueryRow(
		`SELECT day, neutral, personal, work FROM day_totals WHERE day = ?`, day,
	).Scan(&dt.Day, &dt.Neutral, &dt.Personal, &dt.Work)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("day total %s: %w", day, err)
	}
	return dt, nil
}

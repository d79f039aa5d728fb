package store

import (
	"database/sql"
	"fmt"
)

// GetMilestones returns the current milestone record, or (nil, nil) when
// none has been written yet.
func (s *Store) GetMilestones() (*Milestones, error) {
	m := &Milestones{}
	var w100, w75, w50, w25, small, personal int
	err := s.db.QueryRow(
		`SELECT day, work_100, work_75, work_50, work_25, small_work, personal FROM milestones LIMIT 1`,
	).Scan(&m.Day, &w100, &w75, &w50, &w25, &small, &personal)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get milestones: %w", err)
	}
	m.Work100 = w100 == 1
	m.Work75 = w75 == 1
	m.Work50 = w50 == 1
	m.Work25 = w25 == 1
	m.SmallWork = small == 1
	m.Personal = personal == 1
	return m, nil
}

// SaveMilestones replaces the milestone record. The table holds exactly
// one row, for the current calendar day.
func (s *Store) SaveMilestones(m *Milestones) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save milestones: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM milestones`); err != nil {
		return fmt.Errorf("clear milestones: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO milestones (day, work_100, work_75, work_50, work_25, small_work, personal)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Day, b2i(m.Work100), b2i(m.Work75), b2i(m.Work50), b2i(m.Work25), b2i(m.SmallWork), b2i(m.Personal),
	)
	if err != nil {
		return fmt.Errorf("insert milestones: %w", err)
	}
	return tx.Commit()
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

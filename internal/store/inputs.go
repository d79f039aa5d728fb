package store

import (
	"database/sql"
	"fmt"
)

// Input kinds recorded by the external listeners and the workers.
const (
	InputMouse      = "mouse"
	InputKeyboard   = "keyboard"
	InputAudio      = "audio"
	InputFullscreen = "fullscreen"
	InputBackend    = "backend"
)

// IdleInputs are the kinds consulted by idle detection.
var IdleInputs = []string{InputMouse, InputKeyboard, InputAudio, InputFullscreen}

// TouchInput records the last-seen time of an input kind.
func (s *Store) TouchInput(kind string, t int64) error {
	_, err := s.db.Exec(
		`INSERT INTO inputs (kind, time) VALUES (?, ?) ON CONFLICT(kind) DO UPDATE SET time = excluded.time`,
		kind, t,
	)
	if err != nil {
		return fmt.Errorf("touch input %q: %w", kind, err)
	}
	return nil
}

// LastInput returns the last-seen time of an input kind. A kind that was
// never recorded returns (0, false, nil), distinguishable from an error.
func (s *Store) LastInput(kind string) (int64, bool, error) {
	var t int64
	err := s.db.QueryRow(`SELECT time FROM inputs WHERE kind = ?`, kind).Scan(&t)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("last input %q: %w", kind, err)
	}
	return t, true, nil
}

// SetIdle pushes every recent input timestamp back past the idle
// threshold, forcing the next reconcile cycle to record idle time.
func (s *Store) SetIdle(now, idleTime int64) error {
	for _, kind := range IdleInputs {
		t, ok, err := s.LastInput(kind)
		if err != nil {
			return err
		}
		if !ok || now-t >= idleTime {
			continue
		}
		if err := s.TouchInput(kind, now-idleTime); err != nil {
			return err
		}
	}
	return nil
}

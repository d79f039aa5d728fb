package store

import "time"

// Retry runs fn up to attempts times, sleeping delay between tries. It is
// meant for transient store I/O (momentary lock contention); logic errors
// should not be routed through it. The last error is returned once the
// attempts are exhausted.
func Retry(attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}

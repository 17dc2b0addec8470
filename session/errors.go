package session

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange marks an update or delete aimed outside 1..len(items).
	ErrOutOfRange = errors.New("position out of range")

	// ErrInvalidPosition marks position input that is not a number.
	ErrInvalidPosition = errors.New("invalid position")
)

// PositionError reports an out-of-range 1-based position.
type PositionError struct {
	Position int
	Len      int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("index out of range: have %d, got %d", e.Len, e.Position)
}

func (e *PositionError) Unwrap() error { return ErrOutOfRange }

func checkPosition(pos, n int) error {
	if pos < 1 || pos > n {
		return &PositionError{Position: pos, Len: n}
	}
	return nil
}

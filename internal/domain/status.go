package domain

import (
	"fmt"
	"strings"
)

// Status classifies the outcome of a Transaction.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	// StatusUnknown is rarely used; it marks that something happened without
	// a known outcome.
	StatusUnknown Status = "unknown"
)

// ParseStatus converts a case-insensitive name into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusSuccess:
		return StatusSuccess, nil
	case StatusFailure:
		return StatusFailure, nil
	case StatusUnknown:
		return StatusUnknown, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransaction, s)
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusUnknown
}

func (s Status) String() string { return string(s) }

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSnapshot checks a snapshot before anything is written.
func validateSnapshot(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParameter)
	}
	if err := validateString(snap.RunID, "run id"); err != nil {
		return err
	}

	seen := make(map[string]int, len(snap.Records))
	for i := range snap.Records {
		r := &snap.Records[i]
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("%w: record at index %d has no name", ErrInvalidRecord, i)
		}
		if prev, ok := seen[r.Key()]; ok {
			return fmt.Errorf("%w: records %d and %d share identity %q", ErrDuplicateEntry, prev, i, r.Key())
		}
		seen[r.Key()] = i
	}
	return nil
}

package resolve

import (
	"fmt"
	"strings"

	"catalog-sync/core/models"
)

// DuplicatePolicy decides what happens when one key matches several records.
type DuplicatePolicy string

const (
	// PolicyFirstFound keeps the first candidate in backend order.
	PolicyFirstFound DuplicatePolicy = "first_found"
	// PolicySkip leaves the backend unresolved and records a warning.
	PolicySkip DuplicatePolicy = "skip"
	// PolicyError aborts the whole batch.
	PolicyError DuplicatePolicy = "error"
)

// ParseDuplicatePolicy validates a policy name.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFirstFound, PolicySkip, PolicyError:
		return p, nil
	case "":
		return PolicyFirstFound, nil
	default:
		return "", fmt.Errorf("%w: unknown duplicate policy %q (want first_found, skip or error)", models.ErrValidation, s)
	}
}

// DuplicateKeyError reports a key matching several records in one backend.
type DuplicateKeyError struct {
	Key        string
	Backend    models.Backend
	Candidates []string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %s in %s: %d records (%s)",
		e.Key, e.Backend, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Unwrap makes errors.Is(err, models.ErrDuplicateKey) hold.
func (e *DuplicateKeyError) Unwrap() error {
	return models.ErrDuplicateKey
}

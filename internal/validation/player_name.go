package validation

import (
	"fmt"
	"regexp"
	"strings"

	"brainquest/internal/domain"
)

// MinNameLength is the shortest accepted player name after trimming.
const MinNameLength = 2

const (
	ReasonTooShort     = "Name must be at least 2 characters long."
	ReasonInvalidChars = `Only letters, numbers, a single whitespace between words, and "-", "_", "." are allowed.`
)

// Words of letters, digits and - _ . joined by exactly one space.
var playerNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+( [a-zA-Z0-9._-]+)*$`)

// NameResult is the outcome of ValidatePlayerName. Name is only set when Valid,
// Reason only when not.
type NameResult struct {
	Valid  bool
	Name   string
	Reason string
}

// Err returns nil for valid names, otherwise an error wrapping domain.ErrInvalidName.
func (r NameResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidName, r.Reason)
}

// ValidatePlayerName trims surrounding whitespace and checks the remaining name.
func ValidatePlayerName(input string) NameResult {
	name := strings.TrimSpace(input)
	if len(name) < MinNameLength {
		return NameResult{Reason: ReasonTooShort}
	}
	if !playerNameRegex.MatchString(name) {
		return NameResult{Reason: ReasonInvalidChars}
	}
	return NameResult{Valid: true, Name: name}
}

package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-quickevent/internal/config"
)

// Input errors reject the message itself. They are never retried and map to
// a client error at the HTTP boundary.
var (
	// ErrAmbiguousInput marks a message carrying contradictory or duplicated signals.
	ErrAmbiguousInput = errors.New(config.ErrAmbiguousInput)

	// ErrInvalidInput marks a numeric reading that names no real date or time.
	ErrInvalidInput = errors.New(config.ErrInvalidInput)
)

func ambiguous(reason string) error {
	return fmt.Errorf("%w: %s", ErrAmbiguousInput, reason)
}

func invalid(reason string, value any) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidInput, reason, value)
}

// IsInputError reports whether err was caused by the message content.
func IsInputError(err error) bool {
	return errors.Is(err, ErrAmbiguousInput) || errors.Is(err, ErrInvalidInput)
}

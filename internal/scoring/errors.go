package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is matched by every *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfigNotFound is matched by every *ConfigNotFoundError.
	ErrConfigNotFound = errors.New("configuration not found")
)

// InvalidInputError rejects a calculation before any scoring happens.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%g %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// ConfigNotFoundError is returned when no weight set can be resolved. Known
// lists the catalog keys a caller may use instead.
type ConfigNotFoundError struct {
	Key   string
	Known []string
}

func (e *ConfigNotFoundError) Error() string {
	known := strings.Join(e.Known, ", ")
	if e.Key == "" {
		return fmt.Sprintf("configuration not found: no weights or project given (known projects: %s)", known)
	}
	return fmt.Sprintf("configuration not found: project %q (known projects: %s)", e.Key, known)
}

func (e *ConfigNotFoundError) Is(target error) bool { return target == ErrConfigNotFound }

package game

import "fmt"

// InvalidInputError is returned by ProvideInput when a response fails the
// legality check for the pending request's kind. Engine state is unchanged;
// the caller should re-prompt.
type InvalidInputError struct {
	Kind   InputKind
	Seat   int
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s (seat %d): %s", e.Kind, e.Seat, e.Reason)
}

func invalidInput(kind InputKind, seat int, format string, args ...any) error {
	return &InvalidInputError{Kind: kind, Seat: seat, Reason: fmt.Sprintf(format, args...)}
}

// InvariantError indicates an internal consistency check failed. It is an
// engine defect, not a caller error, and the engine halts rather than
// attempting recovery.
type InvariantError struct {
	Check  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation [%s]: %s", e.Check, e.Detail)
}

func invariant(check, format string, args ...any) error {
	return &InvariantError{Check: check, Detail: fmt.Sprintf(format, args...)}
}

// ConfigError reports a Config value outside its valid domain. It is
// returned at construction time, before any game state exists.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

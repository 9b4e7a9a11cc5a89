package action

import (
	"errors"
	"fmt"
)

// ErrRegistrySealed is returned by Register once the registry serves requests.
var ErrRegistrySealed = errors.New("action registry is sealed")

// DuplicateKindError reports a second registration of the same discriminator.
type DuplicateKindError struct {
	Kind Kind
}

func (e *DuplicateKindError) Error() string {
	return fmt.Sprintf("action kind %q already registered", e.Kind)
}

// UnknownVariantError reports a discriminator with no registered variant.
type UnknownVariantError struct {
	Kind Kind
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown action kind %q", e.Kind)
}

// SchemaMismatchError reports an action whose fields do not fit the
// schema registered for its kind.
type SchemaMismatchError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s action: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s action: field %q: %s", e.Kind, e.Field, e.Reason)
}

func mismatch(kind Kind, field, format string, args ...any) *SchemaMismatchError {
	return &SchemaMismatchError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}

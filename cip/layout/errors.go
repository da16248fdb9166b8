package layout

import (
	"errors"
	"fmt"
)

// ErrFieldNotFound matches every NotFoundError via errors.Is.
var ErrFieldNotFound = errors.New("field not found")

// NotFoundError reports a UUID, name or display name with no registered
// counterpart.
type NotFoundError struct {
	Kind string // "uuid", "name" or "display name"
	Key  string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("couldn't translate %s %q: have you fetched a layout where it's present?", e.Kind, e.Key)
}

// Is lets errors.Is(err, ErrFieldNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}

func notFound(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

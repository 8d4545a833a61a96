package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an unregistered identifier or a registered
	// identifier whose location does not exist in the store.
	ErrNotFound = errors.New("source not found")

	// ErrUnavailable indicates the deployment does not allow direct source access.
	ErrUnavailable = errors.New("source unavailable")

	// ErrRead indicates the store failed while reading an existing location.
	ErrRead = errors.New("source read failed")
)

// Kind classifies a resolution failure.
type Kind int

const (
	// KindUnknown: the identifier is not in the table.
	KindUnknown Kind = iota + 1
	// KindMissing: the identifier resolved but the location is absent.
	KindMissing
	// KindUnavailable: the deployment forbids direct source access.
	KindUnavailable
	// KindRead: an unexpected store error.
	KindRead
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindMissing:
		return "missing"
	case KindUnavailable:
		return "unavailable"
	case KindRead:
		return "read"
	default:
		return "invalid"
	}
}

// Error is returned by Resolver.Resolve. errors.Is matches it against
// ErrNotFound, ErrUnavailable or ErrRead depending on Kind.
type Error struct {
	Kind       Kind
	Identifier string
	Location   string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnknown:
		return fmt.Sprintf("component %q is not registered", e.Identifier)
	case KindMissing:
		return fmt.Sprintf("component %q: %s does not exist", e.Identifier, e.Location)
	case KindUnavailable:
		return fmt.Sprintf("component %q: source access is disabled in this environment", e.Identifier)
	default:
		if e.Err != nil {
			return fmt.Sprintf("component %q: failed to read %s: %v", e.Identifier, e.Location, e.Err)
		}
		return fmt.Sprintf("component %q: failed to read %s", e.Identifier, e.Location)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps the error kind onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindUnknown || e.Kind == KindMissing
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrRead:
		return e.Kind == KindRead
	}
	return false
}

// KindOf returns the Kind of a resolution error, or 0 if err is not one.
func KindOf(err error) Kind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return 0
}

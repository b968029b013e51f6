package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "connect", "read", "fetch")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ValidationError is a construction-time error: a check was built with
// an empty id or title. Never retriable and never downgraded to a finding.
type ValidationError struct {
	CheckID string
	Reason  string
}

func (e *ValidationError) Error() string {
	return "invalid check [" + e.CheckID + "]: " + e.Reason
}

func (e *ValidationError) IsRetriable() bool {
	return false
}

var (
	// ErrTargetsUnsupported is returned when a globally-scoped check
	// receives a non-empty target list. A partial scan would produce a
	// misleading PASS, so the call fails loudly instead.
	ErrTargetsUnsupported = errors.New("does not support targeted mode")

	// ErrCategoryIndex is returned on a category index outside 0..7.
	// A caller error, not a data condition.
	ErrCategoryIndex = errors.New("category index out of range")

	// ErrDuplicateSection is returned when a section id is registered twice.
	ErrDuplicateSection = errors.New("duplicate section id")

	// ErrSectionNotFound is returned when looking up an unregistered section.
	ErrSectionNotFound = errors.New("section not found")
)

package metadata

import "fmt"

// ErrorKind classifies a data-quality problem found while building the
// catalog.
type ErrorKind string

const (
	InvalidJSON         ErrorKind = "invalid-json"
	UnreadableMarkdown  ErrorKind = "unreadable-markdown"
	UnknownLicense      ErrorKind = "unknown-license"
	MissingExpectedFile ErrorKind = "missing-expected-file"
	UnreadableFile      ErrorKind = "unreadable-file"
	InvalidProject      ErrorKind = "invalid-project"
	DuplicateExample    ErrorKind = "duplicate-example"
)

// Error is a non-fatal problem attached to a path. Walks collect them
// instead of stopping.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// NewError builds an Error with a formatted cause.
func NewError(kind ErrorKind, path string, format string, args ...any) *Error {
	return newError(kind, path, fmt.Errorf(format, args...))
}

package sjonq

import "fmt"

// ErrParseFailure is returned when the input document cannot be parsed.
type ErrParseFailure struct {
	Reason     string
	InnerError error
}

func (e *ErrParseFailure) Error() string {
	if e.InnerError != nil {
		return fmt.Sprintf("parse failure: %s (Caused by: %v)", e.Reason, e.InnerError)
	}
	return fmt.Sprintf("parse failure: %s", e.Reason)
}
func (e *ErrParseFailure) Unwrap() error { return e.InnerError }

// ErrPathNotFound is returned when navigation cannot resolve a node path
// against the working view. It aborts the whole call chain.
type ErrPathNotFound struct {
	Path string
}

func (e *ErrPathNotFound) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

// ErrIndexOutOfRange is returned by positional access when the requested
// index is outside the prepared sequence.
type ErrIndexOutOfRange struct {
	Index  int
	Length int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range for sequence of length %d", e.Index, e.Length)
}

// ErrAttributeMissing is returned by SortBy when an element lacks the
// required sort attribute or is not a mapping at all.
type ErrAttributeMissing struct {
	Attribute string
}

func (e *ErrAttributeMissing) Error() string {
	return fmt.Sprintf("required attribute missing on element: %s", e.Attribute)
}

// ErrEmptySet is returned by Min, Max and Avg when the collected value set
// is empty. Sum of an empty set is zero and does not produce this error.
type ErrEmptySet struct {
	Operation string
}

func (e *ErrEmptySet) Error() string {
	return fmt.Sprintf("%s is undefined over an empty value set", e.Operation)
}

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a YouTube URL has no recognised video id.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyResult is returned when translation produced no usable text.
	ErrEmptyResult = errors.New("empty result")
)

// RemoteError wraps a failed call to YouTube, the LLM API, or Notion.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote wraps err as a *RemoteError for op. Returns nil for a nil err.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}

// IsRemote reports whether err (or anything it wraps) is a *RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

package compiler

import (
	"errors"
	"fmt"
)

// Error categories. Every failed run reports exactly one error that wraps one
// of these, so callers can branch with errors.Is. A run abandoned because its
// context was cancelled is not a failure of any category and reports the
// context's error unwrapped.
var (
	// ErrConfigLoad: a template or fragment directory is missing or unreadable.
	ErrConfigLoad = errors.New("config load error")
	// ErrRender: the template engine or a post-process hook failed.
	ErrRender = errors.New("render error")
	// ErrIO: reading a source or writing an artifact failed.
	ErrIO = errors.New("io error")
	// ErrWatch: the path watcher could not start or reported a failure.
	ErrWatch = errors.New("watch error")
)

// Wrap tags err with the given category and a short description of what
// failed. A nil err stays nil.
func Wrap(category error, what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", category, what, err)
}

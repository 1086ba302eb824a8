package domain

import (
	"errors"
	"fmt"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNoSources     = errors.New("no sources configured")
	ErrNotSubscribed = errors.New("user not subscribed")
	ErrNotAllowed    = errors.New("action not allowed")
	ErrTemporary     = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/tptin07/blogscout/internal/postsvc"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(prefix string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// describeErr turns a fetch failure into a short status line.
func describeErr(err error) string {
	var statusErr *postsvc.StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("service answered %d", statusErr.Code)
	case errors.Is(err, context.DeadlineExceeded):
		return "service timed out"
	case errors.Is(err, postsvc.ErrInvalidJSON), errors.Is(err, postsvc.ErrUnexpectedShape):
		return "service sent an unreadable response"
	default:
		return err.Error()
	}
}

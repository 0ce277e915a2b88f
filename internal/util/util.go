package util

import (
	"context"
	"strings"
	"time"
)

// TruncateForLog returns a log-safe preview of s: trimmed and cut at limit
// runes, with an ellipsis marker when content was dropped. A non-positive
// limit yields an empty preview.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// WaitFor blocks for d or until the context is canceled, whichever comes
// first. Used for retry backoff so cancellation cuts the wait short.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/danielpatrickdp/gradepipe/internal/notify"
)

// #region constants

const (
	maxNotifyAttempts = 3
	notifyBackoff     = 10 * time.Millisecond
)

// #endregion

// #region deliver

// deliver pushes one message through n, retrying failed attempts with a
// linear backoff. Context cancellation stops retries immediately.
func deliver(ctx context.Context, n notify.Notifier, subject, message string) (int, error) {
	var err error
	for attempt := 1; attempt <= maxNotifyAttempts; attempt++ {
		if err = n.Notify(ctx, subject, message); err == nil {
			return attempt, nil
		}
		if attempt == maxNotifyAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return attempt, fmt.Errorf("notify: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * notifyBackoff):
		}
	}
	return maxNotifyAttempts, fmt.Errorf("notify after %d attempts: %w", maxNotifyAttempts, err)
}

// #endregion

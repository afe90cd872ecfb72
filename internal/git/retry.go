package git

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry bounds for transient index/ref lock contention. Git drops its lock
// files within milliseconds under normal operation, so a few short retries
// cover credential helpers and background maintenance without masking a
// genuinely stuck lock for long.
const (
	DefaultLockRetries    = 4
	DefaultLockRetryDelay = 150 * time.Millisecond
)

// retryPolicy retries a single git invocation when it fails with a transient
// lock-file error. Any other failure is permanent and propagates immediately.
// This is layered under the coordinator's per-worktree lock: that lock
// serializes the coordinator's own operations, while this tolerates lock
// files created by processes outside the coordinator's control.
type retryPolicy struct {
	attempts uint64
	delay    time.Duration
	logger   *slog.Logger
}

func newRetryPolicy(attempts int, delay time.Duration, logger *slog.Logger) retryPolicy {
	if attempts <= 0 {
		attempts = DefaultLockRetries
	}
	if delay <= 0 {
		delay = DefaultLockRetryDelay
	}
	return retryPolicy{attempts: uint64(attempts), delay: delay, logger: logger}
}

// run invokes op, retrying on KindTransientLock failures with a constant
// short delay up to the bounded attempt count.
func (p retryPolicy) run(ctx context.Context, op func() (string, error)) (string, error) {
	var out string

	attempt := func() error {
		var err error
		out, err = op()
		if err == nil {
			return nil
		}
		if Classify(err) != KindTransientLock {
			return backoff.Permanent(err)
		}
		if p.logger != nil {
			p.logger.Warn("git lock file busy, retrying", "error", err)
		}
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.delay), p.attempts),
		ctx,
	)
	if err := backoff.Retry(attempt, b); err != nil {
		return out, err
	}
	return out, nil
}

package errctl

import (
	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
)

// RetryTemporary retries op up to maxAttempts times, but stops as soon as
// op returns nil or an error that Temporary() does not classify as
// transient. This is the consumer-facing use the source documents for
// error_temporary_p: "consumers of the core use this to distinguish 'retry
// the I/O' from 'report to user'".
func RetryTemporary(maxAttempts uint, op func() error) error {
	var last error

	stopOnPermanent := strategy.Strategy(func(attempt uint) bool {
		if attempt == 0 {
			return true
		}
		ei, ok := last.(*ErrInfo)
		return ok && Temporary(ei.Err)
	})

	return retry.Retry(func(attempt uint) error {
		last = op()
		return last
	}, strategy.Limit(maxAttempts), stopOnPermanent)
}

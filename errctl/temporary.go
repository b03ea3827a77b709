package errctl

import (
	"golang.org/x/sys/unix"
)

// Temporary reports whether errnum names a transient, retryable condition:
// EAGAIN, EINTR, and ECOMM. The source aliases ECOMM to EBADRPC on
// platforms whose errno.h lacks ECOMM; Linux's does not, so no separate
// alias is needed here — a caller-supplied EBADRPC-valued code from a
// cross-compiled consumer would arrive as plain int and numerically
// collide with whatever Linux errno shares that value, which is the same
// "accept either spelling" contract the source describes, just satisfied
// by there being exactly one spelling on this platform.
//
// Generalized from shared/eagain's Reader/Writer, which retry a single
// io.Reader/io.Writer call on exactly these codes, into a standalone
// predicate any caller can apply to any loop.
func Temporary(errnum int) bool {
	switch errnum {
	case int(unix.EAGAIN), int(unix.EINTR), int(unix.ECOMM):
		return true
	default:
		return false
	}
}

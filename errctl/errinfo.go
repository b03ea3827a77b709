// Package errctl implements scopedrun's non-local failure mechanism: a
// typed unwind (Die/CatchError) that terminates the current reslist scope
// and propagates an error record to the nearest enclosing catch frame.
package errctl

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/canonical/scopedrun/reslist"
)

// ErrErrnoWasZero is the sentinel error code used when an errno-style call
// claimed failure without actually setting errno. Zero is reserved and
// never a valid error code in an ErrInfo.
const ErrErrnoWasZero = -1

// ErrInfo is the error record carried across an unwind: a numeric,
// errno-family code, an optional message, an optional program name, and a
// flag recording whether the catch frame that produced this record wanted
// a materialized message at all. Msg is only set when WantMsg is true —
// when false, Die* still sets Err and Prgname but never allocates the
// message text.
type ErrInfo struct {
	Err     int
	Msg     string
	Prgname string
	WantMsg bool
}

// Error implements the error interface so an *ErrInfo can cross into
// ordinary Go error-returning code at a package boundary.
func (ei *ErrInfo) Error() string {
	if ei == nil {
		return "<nil errinfo>"
	}
	if ei.Msg != "" {
		return ei.Msg
	}
	return fmt.Sprintf("error %d", ei.Err)
}

// AsError returns ei as a plain error, or nil if ei is nil — a convenience
// for the boundary between CatchError's bool-returning style and regular Go
// error-returning code.
func (ei *ErrInfo) AsError() error {
	if ei == nil {
		return nil
	}
	return ei
}

func normalizeErrno(err int) int {
	if err == 0 {
		return ErrErrnoWasZero
	}
	return err
}

// errnoOf extracts the numeric errno carried by err, unwrapping
// *os.PathError / *os.SyscallError and accepting either syscall.Errno or
// unix.Errno, the two spellings Go code uses depending on whether it went
// through the standard library or golang.org/x/sys/unix directly. Returns 0
// if no errno can be found, which normalizeErrno then coerces the same way
// the source coerces a claimed-but-unset errno of zero.
func errnoOf(err error) int {
	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		return int(sysErr)
	}
	var uErr unix.Errno
	if errors.As(err, &uErr) {
		return int(uErr)
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errnoOf(pathErr.Err)
	}
	var callErr *os.SyscallError
	if errors.As(err, &callErr) {
		return errnoOf(callErr.Err)
	}
	return 0
}

// dieSignal is the panic value used to implement non-local exit. It is
// unexported so that only this package can produce or consume it: a
// recover() anywhere else that sees a *dieSignal should treat it as an
// opaque, unrecognized panic and re-panic it, same as CatchError does for
// any panic value it doesn't own.
type dieSignal struct {
	ei *ErrInfo
}

// captureMessage formats fmt/args into target, the Reslist that was current
// when the catch frame wanting the message was entered, so the string
// survives the destruction of any reslists between the die site and that
// catch frame. wantMsg false skips formatting entirely: only the numeric
// code survives.
func captureMessage(wantMsg bool, target *reslist.Reslist, format string, args []any) string {
	if !wantMsg {
		return ""
	}
	buf := reslist.SprintfOn(target, format, args...)
	return string(buf)
}

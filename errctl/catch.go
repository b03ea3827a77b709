package errctl

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/canonical/scopedrun/procname"
	"github.com/canonical/scopedrun/reslist"
)

// catchFrame is the ephemeral bookkeeping for one in-flight CatchError
// call: the reslist that was current just before the catch (where error
// strings get materialized and where a successful call's resources are
// transferred), and whether this frame's caller wants a message at all.
type catchFrame struct {
	outer   *reslist.Reslist
	wantMsg bool
}

// frames is the stack of currently in-flight catch frames, innermost last.
// Like reslist.current, it is a single-threaded, process-wide construct —
// see package ioguard for the cooperative-scheduling model this assumes.
var frames []*catchFrame

func pushFrame(f *catchFrame) { frames = append(frames, f) }

func popFrame() { frames = frames[:len(frames)-1] }

func topFrame() *catchFrame {
	if len(frames) == 0 {
		return nil
	}
	return frames[len(frames)-1]
}

// CatchError calls fn with a fresh, private Reslist set as current.
//
// If fn returns normally, the private reslist's contents are transferred to
// the Reslist that was current before the call (so they are owned by the
// outer scope and released when it ends), and the now-empty private reslist
// is destroyed. CatchError returns false.
//
// If fn unwinds via the Die family, the private reslist is destroyed
// immediately (its cleanups run, innermost-first). If ei is non-nil, the
// error record is copied into it; otherwise the error is suppressed. Strings
// in the record were already allocated in the outer reslist by Die, so they
// remain valid after the private reslist is gone. CatchError returns true.
func CatchError(fn func(), ei *ErrInfo) (failed bool) {
	outer := reslist.Current()
	private := reslist.New()
	wantMsg := ei != nil && ei.WantMsg

	frame := &catchFrame{outer: outer, wantMsg: wantMsg}
	pushFrame(frame)
	restoreCurrent := reslist.Guard(private)

	defer func() {
		popFrame()
		restoreCurrent()

		r := recover()
		if r == nil {
			reslist.Xfer(outer, private)
			reslist.Destroy(private)
			failed = false
			return
		}

		ds, ours := r.(*dieSignal)
		if !ours {
			// Not one of ours: still release what the protected
			// call had acquired, then let the foreign panic
			// continue exactly as if we were never here.
			reslist.Destroy(private)
			panic(r)
		}

		reslist.Destroy(private)
		if ei != nil {
			*ei = *ds.ei
		}
		failed = true
	}()

	fn()
	return
}

// CatchOneError is CatchError, but only reports success for errors whose
// code equals errnum. Any other error is rethrown via DieRethrow, verbatim,
// to the next outer catch frame.
func CatchOneError(fn func(), errnum int) bool {
	var ei ErrInfo
	ei.WantMsg = true
	failed := CatchError(fn, &ei)
	if !failed {
		return false
	}
	if ei.Err != errnum {
		DieRethrow(&ei)
	}
	return true
}

// DieRethrow unwinds to the next outer catch frame, preserving an
// already-materialized error record verbatim — no reformatting, no fresh
// message allocation.
func DieRethrow(ei *ErrInfo) {
	panic(&dieSignal{ei: ei})
}

// Die unwinds with error code err, formatting a message with fmt/args if
// the nearest enclosing catch frame wants one.
func Die(err int, format string, args ...any) {
	dieWith(err, format, args)
}

// DieErrno extracts the numeric errno carried by sourceErr (a
// syscall.Errno, unix.Errno, or *os.SyscallError wrapping one),
// substituting ErrErrnoWasZero if none can be found or if it is zero, and
// otherwise behaves as Die.
func DieErrno(sourceErr error, format string, args ...any) {
	dieWith(normalizeErrno(errnoOf(sourceErr)), format, args)
}

// DieOOM signals out-of-memory with code ENOMEM. This path must not itself
// allocate beyond what a panic already costs: no message is ever formatted
// or stored.
func DieOOM() {
	ei := &ErrInfo{Err: int(unix.ENOMEM), Prgname: procname.Prgname()}
	panic(&dieSignal{ei: ei})
}

// init installs DieOOM as reslist's allocation-failure handler, so that an
// allocation failure inside reslist.Alloc/Calloc (injected through
// reslist.InjectAllocFailure) unwinds through the same
// catch-frame machinery as any other die, rather than through reslist's
// bare fallback panic.
func init() {
	reslist.OOMHandler = DieOOM
}

func dieWith(err int, format string, args []any) {
	frame := topFrame()
	if frame == nil {
		// No catch installed anywhere: mirrors the process-root
		// default catch the source always has installed by the time
		// any die() can fire. Reaching here means cmd/scopedrun's
		// top-level CatchError was skipped — a programming error —
		// so fail the same way that catch would.
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(os.Stderr, "%s: %s\n", procname.Prgname(), msg)
		os.Exit(1)
	}

	msg := captureMessage(frame.wantMsg, frame.outer, format, args)
	ei := &ErrInfo{
		Err:     err,
		Msg:     msg,
		Prgname: procname.Prgname(),
		WantMsg: frame.wantMsg,
	}
	panic(&dieSignal{ei: ei})
}

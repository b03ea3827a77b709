// Package ioguard implements scopedrun's signal-aware failure injection:
// a scoped widening of the process signal mask around blocking I/O so that
// a pending quit-class signal, or an expired timeout, converts into a typed
// failure at the nearest cooperation point instead of being deferred
// indefinitely.
//
// The design is grounded on shared/cancel's Canceller (a small
// context.Context-shaped cancel/done type) but is reworked against the real
// process signal mask via golang.org/x/sys/unix, because the unit of
// cancellation here is a signal delivered to the process, not a value
// pushed through a Go channel.
package ioguard

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/canonical/scopedrun/errctl"
)

// SignalsUnblockForIO is the set of signals permitted to interrupt a
// blocking syscall while a WithIOSignalsAllowed window is open. Quit-class
// signals plus SIGALRM (for SetTimeout) are unblocked; everything else
// stays deferred the way it is outside any I/O window.
var SignalsUnblockForIO = []unix.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGALRM}

var (
	mu              sync.Mutex
	origSigmask     unix.Sigset_t
	haveOrigSigmask bool

	// DeferQuitSignals is hack_defer_quit_signals in the source: when
	// set, a caller has promised to re-raise a pending quit signal
	// later, so delivery should not immediately unwind.
	DeferQuitSignals bool

	// QuitInProgress is signal_quit_in_progress: set once the process
	// has started unwinding toward exit because of a quit signal, so a
	// second delivery is idempotent instead of re-entering the unwind.
	QuitInProgress bool
)

// windowDepth tracks nested WithIOSignalsAllowed calls so IOWindowOpen
// reflects whether any window is currently open, not just the innermost.
var windowDepth atomic.Int32

// IOWindowOpen reports whether any WithIOSignalsAllowed window is currently
// open in the process; the depth counter is process-wide, not per
// goroutine. Used by CheckTimeout and by RaiseInterrupted
// callers to decide whether a pending signal should convert to a failure
// right now.
func IOWindowOpen() bool {
	return windowDepth.Load() > 0
}

// saveOrigSigmask records the process's signal mask at first use in
// origSigmask. Windows do not restore to this baseline: each
// WithIOSignalsAllowed window restores the mask it snapshotted on entry.
func saveOrigSigmask() {
	mu.Lock()
	defer mu.Unlock()
	if haveOrigSigmask {
		return
	}
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, nil, &origSigmask); err != nil {
		logrus.WithError(err).Warn("ioguard: failed to read starting signal mask")
	}
	haveOrigSigmask = true
}

// WithIOSignalsAllowed widens the signal mask to permit SignalsUnblockForIO
// for the duration of the returned scope and restores the prior mask on
// every exit path — normal return or an errctl panic unwind — matching the
// source's WITH_IO_SIGNALS_ALLOWED. Callers must defer the returned
// function immediately:
//
//	defer ioguard.WithIOSignalsAllowed()()
func WithIOSignalsAllowed() func() {
	saveOrigSigmask()

	var saved unix.Sigset_t
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, nil, &saved); err != nil {
		logrus.WithError(err).Warn("ioguard: failed to snapshot signal mask")
	}

	var unblock unix.Sigset_t
	for _, s := range SignalsUnblockForIO {
		addSignal(&unblock, s)
	}

	widened := saved
	subtract(&widened, &unblock)
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, &widened, nil); err != nil {
		logrus.WithError(err).Warn("ioguard: failed to widen signal mask for I/O")
	}
	windowDepth.Add(1)

	return func() {
		windowDepth.Add(-1)
		if err := unix.PthreadSigmask(unix.SIG_SETMASK, &saved, nil); err != nil {
			logrus.WithError(err).Warn("ioguard: failed to restore signal mask after I/O")
		}
	}
}

// RaiseInterrupted is called by a consumer's I/O wrapper when a blocking
// syscall returns EINTR inside a WithIOSignalsAllowed window and the
// interrupting signal was quit-class rather than SIGALRM: it unwinds with a
// transient failure, letting the nearest catch frame decide whether to
// retry (see errctl.Temporary) or propagate.
func RaiseInterrupted() {
	errctl.Die(int(unix.EINTR), "interrupted system call")
}

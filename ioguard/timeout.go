package ioguard

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/canonical/scopedrun/errctl"
)

// ErrTimeout is the code Die is called with when a SetTimeout-armed itimer
// is found to have expired at a cooperation point.
const ErrTimeout = int(unix.ETIMEDOUT)

var (
	timerMu     sync.Mutex
	timerActive bool
	timerFired  atomic.Bool
	alarmCh     chan os.Signal
	alarmDone   chan struct{}
)

// SetTimeout arms an interval timer for d and returns a restore function the
// caller must defer immediately:
//
//	defer ioguard.SetTimeout(10 * time.Millisecond)()
//
// Expiry does not itself unwind — Go delivers signals on a runtime-owned
// thread, and panicking there would not reach any catch frame on the
// caller's goroutine (errctl.CatchError's recover is per-goroutine). Per the
// preferred strategy in the design notes ("arrange that signal delivery
// translates into a cooperation-point check that then raises a normal
// failure"), expiry instead sets a flag that CheckTimeout — called by I/O
// wrappers at their natural cooperation point, when a blocking call
// returns — turns into a real errctl.Die on the calling goroutine. Both the
// timer and the signal watch are torn down on every exit path.
func SetTimeout(d time.Duration) func() {
	timerMu.Lock()
	if timerActive {
		timerMu.Unlock()
		panic("ioguard: SetTimeout called while a timer is already armed")
	}
	timerActive = true
	timerFired.Store(false)
	alarmCh = make(chan os.Signal, 1)
	alarmDone = make(chan struct{})
	timerMu.Unlock()

	signal.Notify(alarmCh, unix.SIGALRM)

	it := unix.Itimerval{Value: unix.NsecToTimeval(d.Nanoseconds())}
	if err := unix.Setitimer(unix.ITIMER_REAL, &it, nil); err != nil {
		signal.Stop(alarmCh)
		timerMu.Lock()
		timerActive = false
		timerMu.Unlock()
		errctl.Die(int(unix.EINVAL), "ioguard: setitimer failed: %v", err)
	}

	go func(ch chan os.Signal, done chan struct{}) {
		select {
		case <-ch:
			timerFired.Store(true)
		case <-done:
		}
	}(alarmCh, alarmDone)

	return func() {
		close(alarmDone)
		signal.Stop(alarmCh)
		_ = unix.Setitimer(unix.ITIMER_REAL, &unix.Itimerval{}, nil)
		timerMu.Lock()
		timerActive = false
		timerMu.Unlock()
	}
}

// CheckTimeout is the cooperation-point check: if a SetTimeout deadline has
// fired and we are currently inside a WithIOSignalsAllowed window, it calls
// errctl.Die(ErrTimeout, ...) on the calling goroutine. I/O wrapper code
// should call this immediately after a blocking operation returns, and
// RetryTemporary-style loops should call it between attempts.
func CheckTimeout() {
	if timerFired.Load() && IOWindowOpen() {
		errctl.Die(ErrTimeout, "operation timed out")
	}
}

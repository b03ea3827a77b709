package procutil

import (
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// SigtstpMode mirrors the three points at which the broker invokes a
// registered callback: just before the process suspends itself, just after
// it resumes from an expected suspend, and after an unexpected SIGCONT (one
// not preceded by our own SIGTSTP).
type SigtstpMode int

const (
	SigtstpBeforeSuspend SigtstpMode = iota
	SigtstpAfterResume
	SigtstpAfterUnexpectedSigcont
)

// SigtstpCallback is invoked by the broker's dispatch goroutine, never
// concurrently with itself or with another registered callback.
type SigtstpCallback func(mode SigtstpMode, data any)

// SigtstpCookie identifies a registration, returned by SigtstpRegister and
// consumed by SigtstpUnregister.
type SigtstpCookie struct {
	cb   SigtstpCallback
	data any
}

var (
	sigtstpMu        sync.Mutex
	sigtstpCallbacks = map[*SigtstpCookie]struct{}{}
	sigtstpCh        chan os.Signal
	sigtstpStarted   bool
	expectingResume  bool
)

// SigtstpRegister adds cb to the broker's dispatch set and starts the
// broker's signal-watching goroutine on first use. This is the interface
// point the spec carves out for the (out-of-scope) SIGTSTP broker: the
// broker's own suspend/resume policy lives elsewhere, but registering a
// callback and having it fire at the right point is specified here.
func SigtstpRegister(cb SigtstpCallback, data any) *SigtstpCookie {
	sigtstpMu.Lock()
	defer sigtstpMu.Unlock()

	cookie := &SigtstpCookie{cb: cb, data: data}
	sigtstpCallbacks[cookie] = struct{}{}

	if !sigtstpStarted {
		sigtstpStarted = true
		sigtstpCh = make(chan os.Signal, 1)
		signal.Notify(sigtstpCh, unix.SIGTSTP, unix.SIGCONT)
		go dispatchSigtstp()
	}

	return cookie
}

// SigtstpUnregister removes a previously registered callback. A nil cookie
// is a no-op.
func SigtstpUnregister(cookie *SigtstpCookie) {
	if cookie == nil {
		return
	}
	sigtstpMu.Lock()
	defer sigtstpMu.Unlock()
	delete(sigtstpCallbacks, cookie)
}

func dispatchSigtstp() {
	for sig := range sigtstpCh {
		var mode SigtstpMode
		switch sig {
		case unix.SIGTSTP:
			mode = SigtstpBeforeSuspend
			expectingResume = true
		case unix.SIGCONT:
			if expectingResume {
				mode = SigtstpAfterResume
			} else {
				mode = SigtstpAfterUnexpectedSigcont
			}
			expectingResume = false
		default:
			continue
		}

		sigtstpMu.Lock()
		callbacks := make([]*SigtstpCookie, 0, len(sigtstpCallbacks))
		for c := range sigtstpCallbacks {
			callbacks = append(callbacks, c)
		}
		sigtstpMu.Unlock()

		for _, c := range callbacks {
			c.cb(mode, c.data)
		}
	}
}

package reslist

import "github.com/sirupsen/logrus"

// CleanupFunc is a deferred release action. It must not fail: if it cannot
// complete, it should log and return, not panic. Destroy recovers a
// panicking CleanupFunc as a defensive backstop, but that path always
// indicates a bug in the cleanup, not in the resource it is releasing.
type CleanupFunc func(data any)

// Cleanup is a single deferred action owned by a Reslist: the unit the
// two-step allocation discipline is built around. A freshly allocated
// Cleanup is uncommitted (fn == nil); Commit installs the function and data
// and re-inserts the slot at the head of its reslist, so it runs before any
// cleanup that was already there.
type Cleanup struct {
	self      entry
	owner     *Reslist
	fn        CleanupFunc
	data      any
	committed bool
}

// Allocate creates a new, uncommitted Cleanup owned by the current Reslist.
// This is step one of the two-step discipline: allocate the bookkeeping
// before acquiring the resource it will protect, so that a failure to
// acquire the resource leaves nothing but an inert, uncommitted slot for
// teardown to discard.
func Allocate() *Cleanup {
	return AllocateOn(Current())
}

// AllocateOn is Allocate against an explicit Reslist rather than the
// current one — used by helpers that must register into a reslist that
// is not lexically current (e.g. a caller-supplied destination).
func AllocateOn(rl *Reslist) *Cleanup {
	cl := &Cleanup{owner: rl}
	cl.self.kind = kindCleanup
	cl.self.cl = cl
	insertHead(&rl.head, &cl.self)
	return cl
}

// Commit installs fn and data into cl and re-inserts cl at the head of its
// owning Reslist. Commit cannot fail: it only writes fields and relinks a
// node. Committing a Cleanup a second time is a programming error.
func (cl *Cleanup) Commit(fn CleanupFunc, data any) {
	if cl.committed {
		panic("reslist: Cleanup committed twice")
	}
	cl.fn = fn
	cl.data = data
	cl.committed = true

	unlink(&cl.self)
	insertHead(&cl.owner.head, &cl.self)
}

// Forget deregisters and deallocates cl without running fn, even if cl was
// committed. Forget on a nil Cleanup is a no-op. Behavior of a later Commit
// on a forgotten Cleanup is undefined — treated as a programming error, not
// a case this package guards against, matching the open question left
// unresolved by the source.
func (cl *Cleanup) Forget() {
	if cl == nil {
		return
	}
	unlink(&cl.self)
}

func runCleanup(cl *Cleanup) {
	if !cl.committed || cl.fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Warn("scopedrun: cleanup function panicked; continuing teardown")
		}
	}()
	cl.fn(cl.data)
}

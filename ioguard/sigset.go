package ioguard

import "golang.org/x/sys/unix"

// addSignal and subtract implement the handful of sigset_t bit operations
// WithIOSignalsAllowed needs (sigaddset / "remove these bits from that
// set"), since golang.org/x/sys/unix exposes the raw Sigset_t.Val words but
// not the libc sigsetops macros built on them.
func addSignal(set *unix.Sigset_t, sig unix.Signal) {
	word, bit := sigsetIndex(sig)
	set.Val[word] |= 1 << bit
}

// subtract clears every bit present in remove from set — used to turn a
// "signals permitted during I/O" set into a widened mask by removing those
// bits from the process's existing blocked-signals mask.
func subtract(set *unix.Sigset_t, remove *unix.Sigset_t) {
	for i := range set.Val {
		set.Val[i] &^= remove.Val[i]
	}
}

func sigsetIndex(sig unix.Signal) (word, bit uint) {
	s := uint(sig) - 1
	return s / 64, s % 64
}

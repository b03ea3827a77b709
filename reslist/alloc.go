package reslist

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// bufPool backs Alloc/Calloc. Go's GC makes a bare forgotten buffer
// harmless, so the thing this façade actually protects against is a pooled
// buffer never being returned to its pool — which does matter, because the
// whole point of pooling is to bound steady-state allocation. Alloc/Calloc
// therefore still follow the two-step discipline verbatim: allocate the
// release-cleanup, pull the buffer from the pool, commit.
var bufPool = sync.Pool{New: func() any { return new([]byte) }}

// OOMHandler is called instead of completing an allocation whenever the
// injected failure count (see injectFailures) is nonzero. It must not
// return. errctl installs a handler here at init time that unwinds via
// Die, the same way every other allocation failure in this package's
// source material is signaled; the default just panics, so that reslist
// remains usable — and its allocation-failure path remains exercisable —
// without importing errctl.
var OOMHandler = func() { panic("reslist: allocation failed (no OOMHandler installed)") }

var injectFailures atomic.Int32

// InjectAllocFailure makes the next n calls to Alloc/Calloc/AllocOn fail as
// though the allocator were out of memory, for exercising the
// allocation-time failure path in tests. Not for production use.
func InjectAllocFailure(n int) {
	injectFailures.Store(int32(n))
}

// Alloc returns a byte slice of length n, owned by the current Reslist: it
// is returned to the pool when that Reslist is destroyed. Alloc follows the
// allocate-cleanup-before-resource discipline internally; callers never see
// the intermediate uncommitted state.
func Alloc(n int) []byte {
	return AllocOn(Current(), n)
}

// AllocOn is Alloc against an explicit Reslist rather than the current one —
// used by errctl to materialize an error message into the reslist that was
// current when the enclosing catch frame was entered, which may not be
// Current() by the time Die runs.
func AllocOn(rl *Reslist, n int) []byte {
	cl := AllocateOn(rl)

	if injectFailures.Load() > 0 {
		injectFailures.Add(-1)
		cl.Forget()
		OOMHandler()
		panic("reslist: OOMHandler returned")
	}

	bp := bufPool.Get().(*[]byte)
	buf := *bp
	if cap(buf) < n {
		buf = make([]byte, n)
	} else {
		buf = buf[:n]
	}
	cl.Commit(func(data any) {
		b := data.([]byte)
		bufPool.Put(&b)
	}, buf)
	return buf
}

// Calloc is Alloc with the returned slice zeroed — relevant because a
// pooled buffer may carry stale bytes from a previous owner.
func Calloc(n int) []byte {
	buf := Alloc(n)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Sprintf formats like fmt.Sprintf but returns a []byte owned by the
// current Reslist rather than an ordinary Go string, for callers building
// up a reslist-scoped buffer incrementally (the equivalent of the source's
// xaprintf family built on xalloc).
func Sprintf(format string, args ...any) []byte {
	return SprintfOn(Current(), format, args...)
}

// SprintfOn is Sprintf against an explicit Reslist rather than the current
// one.
func SprintfOn(rl *Reslist, format string, args ...any) []byte {
	s := fmt.Sprintf(format, args...)
	buf := AllocOn(rl, len(s))
	copy(buf, s)
	return buf
}

// Strdup copies s into a reslist-owned buffer.
func Strdup(s string) []byte {
	buf := Alloc(len(s))
	copy(buf, s)
	return buf
}

// Strndup copies at most n bytes of s into a reslist-owned buffer.
func Strndup(s string, n int) []byte {
	if n > len(s) {
		n = len(s)
	}
	buf := Alloc(n)
	copy(buf, s[:n])
	return buf
}

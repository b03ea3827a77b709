package reslist

import (
	"testing"
)

func recordingCleanup(order *[]string, name string) CleanupFunc {
	return func(data any) {
		*order = append(*order, name)
	}
}

func TestScopeLIFOOrder(t *testing.T) {
	var order []string

	func() {
		defer Scope()()

		c1 := Allocate()
		c1.Commit(recordingCleanup(&order, "c1"), nil)

		c2 := Allocate()
		c2.Commit(recordingCleanup(&order, "c2"), nil)

		c3 := Allocate()
		c3.Commit(recordingCleanup(&order, "c3"), nil)
	}()

	want := []string{"c3", "c2", "c1"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestScopeRestoresCurrentBinding(t *testing.T) {
	before := Current()

	func() {
		defer Scope()()
		if Current() == before {
			t.Fatalf("Scope did not rebind current")
		}
	}()

	if Current() != before {
		t.Fatalf("Scope did not restore current binding: got %v, want %v", Current(), before)
	}
}

func TestUncommittedSlotIsInert(t *testing.T) {
	ran := false

	func() {
		defer Scope()()
		Allocate() // never committed
	}()

	if ran {
		t.Fatalf("uncommitted cleanup ran a function")
	}
}

func TestCommitTwiceDoubleCommitPanics(t *testing.T) {
	defer Scope()()
	cl := Allocate()
	cl.Commit(func(any) {}, nil)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on second Commit")
		}
	}()
	cl.Commit(func(any) {}, nil)
}

func TestForgetSuppressesCommittedFunction(t *testing.T) {
	ran := false

	func() {
		defer Scope()()
		cl := Allocate()
		cl.Commit(func(any) { ran = true }, nil)
		cl.Forget()
	}()

	if ran {
		t.Fatalf("Forget did not suppress the committed cleanup")
	}
}

func TestXferPreservesOrder(t *testing.T) {
	// R has cleanups [r2, r1] (r1 committed first, so r2 is at the head).
	// D has [d2, d1]. After Xfer(R, D), destroying R must invoke
	// d2, d1, r2, r1 in that order.
	var order []string

	r := New()
	rc1 := AllocateOn(r)
	rc1.Commit(recordingCleanup(&order, "r1"), nil)
	rc2 := AllocateOn(r)
	rc2.Commit(recordingCleanup(&order, "r2"), nil)

	d := New()
	dc1 := AllocateOn(d)
	dc1.Commit(recordingCleanup(&order, "d1"), nil)
	dc2 := AllocateOn(d)
	dc2.Commit(recordingCleanup(&order, "d2"), nil)

	Xfer(r, d)
	Destroy(d) // donor is now empty; a no-op
	Destroy(r)

	want := []string{"d2", "d1", "r2", "r1"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestDestroyIsTotalDespitePanickingCleanup(t *testing.T) {
	var order []string

	func() {
		defer Scope()()

		c1 := Allocate()
		c1.Commit(recordingCleanup(&order, "before"), nil)

		c2 := Allocate()
		c2.Commit(func(any) { panic("boom") }, nil)

		c3 := Allocate()
		c3.Commit(recordingCleanup(&order, "after"), nil)
	}()

	// c3 committed last, runs first; c2 panics but teardown continues;
	// c1 still runs.
	want := []string{"after", "before"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
}

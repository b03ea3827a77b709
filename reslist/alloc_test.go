package reslist

import (
	"os"
	"testing"
)

func TestAllocOwnedByCurrentReslist(t *testing.T) {
	var buf []byte

	func() {
		defer Scope()()
		buf = Alloc(16)
		if len(buf) != 16 {
			t.Fatalf("got len %d, want 16", len(buf))
		}
	}()

	// Scope teardown returned buf to the pool; Alloc again and make sure
	// it still hands back a correctly sized, usable slice (pool reuse
	// doesn't corrupt the length/cap contract).
	func() {
		defer Scope()()
		buf2 := Calloc(16)
		for _, b := range buf2 {
			if b != 0 {
				t.Fatalf("Calloc returned non-zeroed memory")
			}
		}
	}()
}

func TestSprintfAndStrdup(t *testing.T) {
	defer Scope()()

	got := Sprintf("%s=%d", "x", 3)
	if string(got) != "x=3" {
		t.Fatalf("got %q, want %q", got, "x=3")
	}

	dup := Strdup("hello")
	if string(dup) != "hello" {
		t.Fatalf("got %q, want %q", dup, "hello")
	}

	trunc := Strndup("hello world", 5)
	if string(trunc) != "hello" {
		t.Fatalf("got %q, want %q", trunc, "hello")
	}
}

// TestInjectAllocFailureCallsOOMHandlerAndForgetsSlot covers the mechanics
// errctl's OOM scenario (S3) builds on: an injected failure calls
// OOMHandler instead of completing the allocation, and leaves nothing
// behind for the owning Reslist to tear down.
func TestInjectAllocFailureCallsOOMHandlerAndForgetsSlot(t *testing.T) {
	prev := OOMHandler
	defer func() { OOMHandler = prev }()

	called := false
	OOMHandler = func() {
		called = true
		panic("synthetic OOM")
	}

	func() {
		defer Scope()()
		InjectAllocFailure(1)

		defer func() {
			r := recover()
			if r != "synthetic OOM" {
				t.Fatalf("got panic %v, want the synthetic OOM handler's panic", r)
			}
			if rl := Current(); rl.head.next != &rl.head {
				t.Fatalf("failed allocation left a slot on the owning Reslist")
			}
		}()
		Alloc(4)
		t.Fatalf("unreachable: Alloc should have called OOMHandler")
	}()

	if !called {
		t.Fatalf("OOMHandler was not invoked")
	}
	if injectFailures.Load() != 0 {
		t.Fatalf("injected failure count not consumed")
	}
}

func TestUnlinkCleanupRemovesFileOnDestroy(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "scopedrun-unlink-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := f.Name()
	f.Close()

	func() {
		defer Scope()()
		UnlinkCleanup(path)
	}()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be removed, stat err = %v", path, err)
	}
}

package procutil

import (
	"testing"

	"github.com/canonical/scopedrun/reslist"
)

func TestStartProcessKillsChildOnTeardown(t *testing.T) {
	func() {
		defer reslist.Scope()()

		p, err := StartProcess("sleep", []string{"5"})
		if err != nil {
			t.Fatalf("StartProcess: %v", err)
		}
		if p == nil {
			t.Fatalf("expected a non-nil Process")
		}
		// Scope teardown below commits to signaling and waiting on
		// the child; nothing further to do here.
	}()
}

func TestStartProcessReturnsErrorForMissingBinary(t *testing.T) {
	defer reslist.Scope()()

	_, err := StartProcess("scopedrun-definitely-not-a-real-binary", nil)
	if err == nil {
		t.Fatalf("expected an error for a nonexistent binary")
	}
}

package errctl

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestTemporaryClassification(t *testing.T) {
	cases := []struct {
		errnum int
		want   bool
	}{
		{int(unix.EAGAIN), true},
		{int(unix.EINTR), true},
		{int(unix.ECOMM), true},
		{int(unix.ENOENT), false},
		{int(unix.EIO), false},
		{0, false},
	}

	for _, c := range cases {
		got := Temporary(c.errnum)
		if got != c.want {
			t.Errorf("Temporary(%d) = %v, want %v", c.errnum, got, c.want)
		}
	}
}

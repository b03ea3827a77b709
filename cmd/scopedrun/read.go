package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/canonical/scopedrun/errctl"
	"github.com/canonical/scopedrun/ioguard"
	"github.com/canonical/scopedrun/reslist"
)

type cmdRead struct {
	global *cmdGlobal
}

func (c *cmdRead) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <path>",
		Short: "Read a file inside a timeout-bounded, signal-aware I/O window",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	cmd.Flags().DurationVar(&c.global.flagTimeout, "timeout", 2*time.Second, "Maximum time to spend reading")
	return cmd
}

// run installs the process-root catch frame: every command needs exactly
// one top-level catch that turns a die() anywhere beneath it into a
// printed error and a non-zero exit, rather than an uncaught panic.
// Everything inside fn runs under a fresh Reslist whose teardown (on
// success or failure) is handled entirely by errctl.CatchError and
// reslist.Scope.
func (c *cmdRead) run(cmd *cobra.Command, args []string) error {
	path := args[0]

	var contents []byte
	var ei errctl.ErrInfo
	ei.WantMsg = true

	failed := errctl.CatchError(func() {
		contents = readFileProtected(path, c.global.flagTimeout)
	}, &ei)

	if failed {
		return errors.Errorf("%s", ei.Msg)
	}

	logrus.WithField("bytes", len(contents)).Info("read complete")
	_, err := os.Stdout.Write(contents)
	return err
}

// readFileProtected demonstrates the full stack: a scoped Reslist owns the
// open file handle and the read buffer; SetTimeout+WithIOSignalsAllowed
// bound the blocking read; errctl.Die unwinds on any failure, and the
// committed cleanups run in reverse order as the Reslist tears down.
func readFileProtected(path string, timeout time.Duration) []byte {
	defer reslist.Scope()()
	defer ioguard.SetTimeout(timeout)()
	defer ioguard.WithIOSignalsAllowed()()

	cl := reslist.Allocate()
	f, err := os.Open(path)
	if err != nil {
		errctl.DieErrno(err, "open %s", path)
	}
	cl.Commit(func(data any) {
		_ = data.(*os.File).Close()
	}, f)

	info, err := f.Stat()
	if err != nil {
		errctl.DieErrno(err, "stat %s", path)
	}

	buf := reslist.Alloc(int(info.Size()))
	if _, err := f.Read(buf); err != nil {
		ioguard.CheckTimeout()
		errctl.DieErrno(err, "read %s", path)
	}
	ioguard.CheckTimeout()

	return buf
}

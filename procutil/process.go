// Package procutil adapts a handful of external collaborators — process
// execution, random/hex helpers, and the SIGTSTP broker — for use alongside
// the reslist runtime. StartProcess follows the reslist two-step allocation
// discipline: it allocates a cleanup before spawning the child and commits
// it once the child is running, so a Reslist teardown never leaks a running
// child. The random/hex helpers hold no resources, and a SIGTSTP
// registration is not owned by any Reslist: it stays in place until
// SigtstpUnregister removes it.
package procutil

import (
	"os/exec"
	"syscall"

	"github.com/canonical/scopedrun/reslist"
)

// Process is a running child process owned by a Reslist: StartProcess
// commits a cleanup that signals and waits on the child before its Reslist
// finishes tearing down, so a failure anywhere downstream of spawning can
// never leak a running child. Grounded on shared/subprocess's
// NewProcess/Start/Signal/Wait shape, trimmed to the lifecycle the two-step
// discipline needs.
type Process struct {
	cmd *exec.Cmd
}

// StartProcess allocates a cleanup, starts name with args, and commits the
// cleanup to signal-and-wait on the child — the xexecvpe-adjacent entry
// point the spec calls out as an external collaborator that "allocates
// through" the core.
func StartProcess(name string, args []string) (*Process, error) {
	cl := reslist.Allocate()

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		cl.Forget()
		return nil, err
	}

	p := &Process{cmd: cmd}
	cl.Commit(func(data any) {
		proc := data.(*Process)
		_ = proc.Signal(syscall.SIGKILL)
		_, _ = proc.Wait()
	}, p)

	return p, nil
}

// Signal delivers sig to the child.
func (p *Process) Signal(sig syscall.Signal) error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Signal(sig)
}

// Wait blocks for the child to exit and returns its exit code.
func (p *Process) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		return exitErr.ExitCode(), err
	}
	return -1, err
}

func asExitError(err error, target **exec.ExitError) bool {
	if e, ok := err.(*exec.ExitError); ok {
		*target = e
		return true
	}
	return false
}

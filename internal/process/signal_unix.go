//go:build unix

package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

//nolint:gochecknoglobals // Platform signal mapping
var (
	sigTerminate = unix.SIGTERM
	sigInterrupt = unix.SIGINT
	sigKill      = unix.SIGKILL
)

// setProcessGroup puts the child in its own process group so signals reach
// everything it spawns.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to the process group led by proc.
// A group that no longer exists is not an error.
func signalGroup(proc *os.Process, sig unix.Signal) error {
	err := unix.Kill(-proc.Pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

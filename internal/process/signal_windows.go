//go:build windows

package process

import (
	"errors"
	"os"
	"os/exec"
)

type groupSignal int

const (
	sigTerminate groupSignal = iota
	sigInterrupt
	sigKill
)

// setProcessGroup is a no-op on Windows.
func setProcessGroup(*exec.Cmd) {}

// signalGroup kills proc. Windows has no POSIX signals, so every step of
// the escalation is a kill.
func signalGroup(proc *os.Process, _ groupSignal) error {
	err := proc.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/simdriver/internal/ctxutil"
	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

// Process is a started external command.
type Process struct {
	cmd        *exec.Cmd
	logger     zerolog.Logger
	drainGrace time.Duration

	readers []*os.File
	drains  errgroup.Group
	stdout  accumulator
	stderr  accumulator

	// exited closes when the child has been reaped; done closes once
	// output has been drained and result is set.
	exited chan struct{}
	done   chan struct{}

	exitCode int
	waitErr  error
}

// Start launches executable without waiting for it to finish. The process
// is not bound to ctx; ctx only gates the launch itself.
func (r *DefaultRunner) Start(ctx context.Context, executable string, args []string, env map[string]string) (*Process, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %w", simerrors.ErrProcessLaunchFailed, err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return nil, fmt.Errorf("%w: stderr pipe: %w", simerrors.ErrProcessLaunchFailed, err)
	}

	cmd := exec.Command(executable, args...) //#nosec G204 -- executable comes from configuration
	cmd.Env = MergeEnv(os.Environ(), env)
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	setProcessGroup(cmd)

	p := &Process{
		cmd:        cmd,
		logger:     r.logger,
		drainGrace: r.drainGrace,
		readers:    []*os.File{stdoutR, stderrR},
		exited:     make(chan struct{}),
		done:       make(chan struct{}),
		exitCode:   -1,
	}

	// Readers are running before the child exists.
	p.drains.Go(func() error { return drain(stdoutR, &p.stdout) })
	p.drains.Go(func() error { return drain(stderrR, &p.stderr) })

	startErr := cmd.Start()
	// The child holds its own copies; ours must go so readers see EOF.
	closeAll(stdoutW, stderrW)
	if startErr != nil {
		_ = p.drains.Wait()
		closeAll(stdoutR, stderrR)
		return nil, fmt.Errorf("%w: %s: %w", simerrors.ErrProcessLaunchFailed, executable, startErr)
	}

	r.logger.Debug().
		Str("executable", executable).
		Strs("args", args).
		Int("pid", cmd.Process.Pid).
		Msg("process started")

	go p.reap()
	return p, nil
}

// reap waits for the child, then finishes draining with a bounded deadline.
// A grandchild that inherited the pipes cannot hold the read open past it.
func (p *Process) reap() {
	p.waitErr = p.cmd.Wait()
	if p.cmd.ProcessState != nil {
		p.exitCode = p.cmd.ProcessState.ExitCode()
	}
	close(p.exited)

	deadline := time.Now().Add(p.drainGrace)
	for _, f := range p.readers {
		_ = f.SetReadDeadline(deadline)
	}
	if err := p.drains.Wait(); err != nil {
		p.logger.Debug().Err(err).Msg("output drain ended with error")
	}
	closeAll(p.readers...)
	close(p.done)
}

// Pid returns the child's process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Exited reports whether the child has exited.
func (p *Process) Exited() bool {
	select {
	case <-p.exited:
		return true
	default:
		return false
	}
}

// Done closes once the child has exited and its output has been collected.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Terminate sends SIGTERM to the child's process group.
func (p *Process) Terminate() error {
	return signalGroup(p.cmd.Process, sigTerminate)
}

// Interrupt sends SIGINT to the child's process group.
func (p *Process) Interrupt() error {
	return signalGroup(p.cmd.Process, sigInterrupt)
}

// Kill sends SIGKILL to the child's process group.
func (p *Process) Kill() error {
	return signalGroup(p.cmd.Process, sigKill)
}

// Result returns the collected outcome. It must only be called after Done closed.
func (p *Process) Result() (*Result, error) {
	res := &Result{
		ExitCode: p.exitCode,
		Stdout:   p.stdout.String(),
		Stderr:   p.stderr.String(),
	}
	var exitErr *exec.ExitError
	if p.waitErr != nil && !errors.As(p.waitErr, &exitErr) {
		return res, p.waitErr
	}
	return res, nil
}

// Wait blocks until the process has exited and been drained, or ctx is done.
func (p *Process) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run executes the command under timeout. When timeout is not positive the
// runner's default applies. On timeout or ctx cancellation the process group
// is escalated from SIGTERM to SIGKILL before Run returns.
func (r *DefaultRunner) Run(ctx context.Context, executable string, args []string, env map[string]string, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}

	p, err := r.Start(ctx, executable, args, env)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.exited:
		<-p.done
		res, waitErr := p.Result()
		if waitErr != nil {
			return nil, fmt.Errorf("wait for %s: %w", executable, waitErr)
		}
		r.logger.Debug().
			Str("executable", executable).
			Int("exit_code", res.ExitCode).
			Msg("process exited")
		return res, nil

	case <-timer.C:
		r.logger.Warn().
			Str("executable", executable).
			Dur("timeout", timeout).
			Int("pid", p.Pid()).
			Msg("process timed out, terminating")
		r.escalate(p)
		<-p.done
		return nil, &TimeoutError{
			Executable: executable,
			Timeout:    timeout,
			Stdout:     p.stdout.String(),
			Stderr:     p.stderr.String(),
		}

	case <-ctx.Done():
		r.logger.Debug().
			Str("executable", executable).
			Int("pid", p.Pid()).
			Msg("context canceled, terminating process")
		r.escalate(p)
		<-p.done
		return nil, ctx.Err()
	}
}

// escalate terminates p in three steps, rechecking for exit between them.
// The final SIGKILL always goes to the group so stragglers that ignored the
// earlier signals do not outlive the call.
func (r *DefaultRunner) escalate(p *Process) {
	steps := []struct {
		name string
		send func() error
		wait time.Duration
	}{
		{"SIGTERM", p.Terminate, r.gracefulWait},
		{"SIGINT", p.Interrupt, r.interruptWait},
	}

	for _, step := range steps {
		if err := step.send(); err != nil {
			r.logger.Debug().Err(err).Str("signal", step.name).Msg("signal delivery failed")
		}
		if waitClosed(p.exited, step.wait) {
			r.logger.Debug().Str("signal", step.name).Msg("process exited after signal")
			_ = p.Kill()
			return
		}
	}

	r.logger.Warn().Int("pid", p.Pid()).Msg("process ignored termination, sending SIGKILL")
	if err := p.Kill(); err != nil {
		r.logger.Error().Err(err).Int("pid", p.Pid()).Msg("failed to send SIGKILL")
	}
	<-p.exited
}

// waitClosed reports whether ch closed within d.
func waitClosed(ch <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

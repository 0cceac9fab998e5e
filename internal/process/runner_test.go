//go:build unix

package process_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/process"
)

func sh(script string) (string, []string) {
	return "/bin/sh", []string{"-c", script}
}

func TestRun_CapturesOutputAndExitCode(t *testing.T) {
	runner := process.NewRunner()
	exe, args := sh("echo out; echo err >&2; exit 3")

	res, err := runner.Run(context.Background(), exe, args, nil, 10*time.Second)

	require.NoError(t, err, "non-zero exit is not an engine error")
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestRun_Success(t *testing.T) {
	runner := process.NewRunner()
	exe, args := sh("printf hello")

	res, err := runner.Run(context.Background(), exe, args, nil, 10*time.Second)

	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "hello", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestRun_EnvOverrideWins(t *testing.T) {
	t.Setenv("SIMDRIVER_PROCESS_TEST", "inherited")
	t.Setenv("SIMDRIVER_PROCESS_KEEP", "kept")
	runner := process.NewRunner()
	exe, args := sh(`printf "%s|%s|%s" "$SIMDRIVER_PROCESS_TEST" "$SIMDRIVER_PROCESS_KEEP" "$SIMDRIVER_PROCESS_NEW"`)

	res, err := runner.Run(context.Background(), exe, args, map[string]string{
		"SIMDRIVER_PROCESS_TEST": "override",
		"SIMDRIVER_PROCESS_NEW":  "new",
	}, 10*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "override|kept|new", res.Stdout)
}

func TestRun_LargeOutputIsNotTruncated(t *testing.T) {
	const stdoutSize = 1 << 20
	const stderrSize = 256 << 10
	runner := process.NewRunner()
	exe, args := sh("head -c " + strconv.Itoa(stderrSize) + " /dev/zero | tr '\\0' 'e' >&2; " +
		"head -c " + strconv.Itoa(stdoutSize) + " /dev/zero | tr '\\0' 'o'")

	res, err := runner.Run(context.Background(), exe, args, nil, 30*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Len(t, res.Stdout, stdoutSize)
	assert.Len(t, res.Stderr, stderrSize)
	assert.Equal(t, strings.Repeat("o", 16), res.Stdout[:16])
}

func TestRun_LaunchFailure(t *testing.T) {
	runner := process.NewRunner()

	res, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), nil, nil, time.Second)

	require.ErrorIs(t, err, simerrors.ErrProcessLaunchFailed)
	assert.Nil(t, res)
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	runner := process.NewRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exe, args := sh("exit 0")

	_, err := runner.Run(ctx, exe, args, nil, time.Second)

	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_TimeoutGracefulTermination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process timing test in short mode")
	}
	runner := process.NewRunner()
	exe, args := sh("echo started; sleep 30")

	start := time.Now()
	res, err := runner.Run(context.Background(), exe, args, nil, 200*time.Millisecond)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, simerrors.ErrProcessTimeout)
	assert.Nil(t, res)
	assert.Less(t, elapsed, 2*time.Second)

	var timeoutErr *process.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 200*time.Millisecond, timeoutErr.Timeout)
	assert.Equal(t, "started\n", timeoutErr.Stdout)
}

func TestRun_TimeoutEscalatesToKill(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process timing test in short mode")
	}
	pidFile := filepath.Join(t.TempDir(), "pid")
	runner := process.NewRunner()
	// The shell and its children ignore SIGTERM and SIGINT.
	exe, args := sh(`trap "" TERM INT; echo $$ > ` + pidFile + `; while :; do sleep 0.05; done`)

	timeout := 300 * time.Millisecond
	start := time.Now()
	_, err := runner.Run(context.Background(), exe, args, nil, timeout)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, simerrors.ErrProcessTimeout)
	assert.GreaterOrEqual(t, elapsed, timeout+500*time.Millisecond, "SIGTERM and SIGINT waits should elapse")
	assert.Less(t, elapsed, timeout+1100*time.Millisecond+time.Second)

	data, readErr := os.ReadFile(pidFile) //#nosec G304 -- test temp file
	require.NoError(t, readErr)
	pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, convErr)

	killErr := unix.Kill(pid, 0)
	assert.True(t, errors.Is(killErr, unix.ESRCH), "process %d should not be running, got %v", pid, killErr)
}

func TestRun_ContextCancelTerminates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process timing test in short mode")
	}
	runner := process.NewRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	exe, args := sh("sleep 30")

	start := time.Now()
	_, err := runner.Run(ctx, exe, args, nil, time.Minute)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, simerrors.ErrProcessTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRun_GrandchildHoldingPipeDoesNotBlock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process timing test in short mode")
	}
	runner := process.NewRunner(process.WithDrainGrace(100 * time.Millisecond))
	exe, args := sh("sleep 5 & echo done")

	start := time.Now()
	res, err := runner.Run(context.Background(), exe, args, nil, 10*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "done\n", res.Stdout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestStart_InterruptAndWait(t *testing.T) {
	runner := process.NewRunner()
	exe, args := sh("trap 'echo stopping; exit 0' INT; while :; do sleep 0.05; done")

	p, err := runner.Start(context.Background(), exe, args, nil)
	require.NoError(t, err)
	assert.Positive(t, p.Pid())
	assert.False(t, p.Exited())

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, p.Interrupt())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, p.Exited())
	assert.Contains(t, res.Stdout, "stopping")
}

func TestStart_WaitHonorsContext(t *testing.T) {
	runner := process.NewRunner()
	exe, args := sh("sleep 30")

	p, err := runner.Start(context.Background(), exe, args, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = p.Kill()
		<-p.Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRunner_OptionsIgnoreNonPositive(t *testing.T) {
	runner := process.NewRunner(
		process.WithGracefulWait(0),
		process.WithInterruptWait(-1),
		process.WithDrainGrace(0),
		process.WithDefaultTimeout(0),
	)
	exe, args := sh("exit 0")

	res, err := runner.Run(context.Background(), exe, args, nil, 0)
	require.NoError(t, err)
	assert.True(t, res.Success())
}

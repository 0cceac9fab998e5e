package simulator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/simdriver/internal/constants"
	"github.com/mrz1836/simdriver/internal/ctxutil"
	simerrors "github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/process"
)

// RecordingSession is a running `simctl io recordVideo` process.
// A session cannot be restarted once stopped.
type RecordingSession struct {
	proc        *process.Process
	outputPath  string
	settleDelay time.Duration
	logger      zerolog.Logger

	mu      sync.Mutex
	stopped bool
}

// StartRecording launches the recorder for udid writing to outputPath and
// returns without waiting for it. Call WaitUntilStarted before relying on
// the recording and Stop to finalize the file.
func (c *Controller) StartRecording(ctx context.Context, udid, outputPath string) (*RecordingSession, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return nil, fmt.Errorf("%w: create recording directory: %w", simerrors.ErrRecordingFailed, err)
	}

	args := []string{"simctl", "io", udid, "recordVideo", "--codec=" + c.codec, "--force", outputPath}
	proc, err := c.runner.Start(ctx, c.xcrunPath, args, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", simerrors.ErrRecordingFailed, err)
	}

	c.logger.Debug().
		Str("udid", udid).
		Str("output", outputPath).
		Int("pid", proc.Pid()).
		Msg("recording started")

	return &RecordingSession{
		proc:        proc,
		outputPath:  outputPath,
		settleDelay: c.settleDelay,
		logger:      c.logger,
	}, nil
}

// OutputPath returns the file the recording is written to.
func (s *RecordingSession) OutputPath() string {
	return s.outputPath
}

// IsRunning reports whether the recorder process is still alive.
func (s *RecordingSession) IsRunning() bool {
	return !s.proc.Exited()
}

// WaitUntilStarted waits for the recorder to settle, at most timeout.
// simctl prints no reliable readiness line, so a fixed settle delay stands
// in for one. A recorder that already exited is reported as ErrRecordingFailed.
func (s *RecordingSession) WaitUntilStarted(ctx context.Context, timeout time.Duration) error {
	wait := s.settleDelay
	if timeout > 0 && timeout < wait {
		wait = timeout
	}

	select {
	case <-s.proc.Done():
		return s.exitedEarly()
	default:
	}

	if err := ctxutil.Sleep(ctx, wait); err != nil {
		return err
	}

	if s.proc.Exited() {
		<-s.proc.Done()
		return s.exitedEarly()
	}
	return nil
}

func (s *RecordingSession) exitedEarly() error {
	res, _ := s.proc.Result()
	return simerrors.Wrapf(simerrors.ErrRecordingFailed, "recorder exited with code %d: %s",
		res.ExitCode, strings.TrimSpace(res.Stderr))
}

// Stop interrupts the recorder and blocks until it exits and the video is
// finalized. If ctx ends first the recorder is killed. A second Stop returns
// ErrRecordingStopped. Stopping before WaitUntilStarted returned may catch
// the recorder before it handles SIGINT, which reports ErrRecordingFailed.
func (s *RecordingSession) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return simerrors.ErrRecordingStopped
	}
	s.stopped = true
	s.mu.Unlock()

	if !s.proc.Exited() {
		if err := s.proc.Interrupt(); err != nil {
			s.logger.Debug().Err(err).Msg("failed to interrupt recorder")
		}
	}

	waitCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, constants.RecorderStopTimeout)
		defer cancel()
	}

	res, err := s.proc.Wait(waitCtx)
	if err != nil {
		s.logger.Warn().Err(err).Str("output", s.outputPath).Msg("recorder did not stop, killing")
		_ = s.proc.Kill()
		<-s.proc.Done()
		return simerrors.Wrap(err, "failed to stop recording")
	}

	if !res.Success() {
		return simerrors.Wrapf(simerrors.ErrRecordingFailed, "recorder exited with code %d: %s",
			res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	s.logger.Debug().Str("output", s.outputPath).Msg("recording stopped")
	return nil
}

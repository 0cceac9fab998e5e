// Package driver runs action scripts on a simulator through the prebuilt
// UI test runner.
//
// The runner cannot be linked in-process, so a run is a file handshake:
// the script is written to a private working directory, a copy of the
// runner manifest is rewritten to point the runner at it, xcodebuild is
// invoked, and the runner's result file is read back. Recording, when
// requested, runs alongside the runner.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/simdriver/internal/constants"
	"github.com/mrz1836/simdriver/internal/ctxutil"
	simerrors "github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/process"
	"github.com/mrz1836/simdriver/internal/script"
	"github.com/mrz1836/simdriver/internal/simulator"
)

// maxStderrTail caps how much runner stderr is carried in a synthesized result.
const maxStderrTail = 4096

// Recording is a screen recording in progress.
type Recording interface {
	WaitUntilStarted(ctx context.Context, timeout time.Duration) error
	Stop(ctx context.Context) error
	OutputPath() string
}

// Recorder starts screen recordings.
type Recorder interface {
	StartRecording(ctx context.Context, udid, outputPath string) (Recording, error)
}

// ControllerRecorder adapts a simulator.Controller to Recorder.
type ControllerRecorder struct {
	Controller *simulator.Controller
}

// StartRecording starts a simctl recording.
func (r ControllerRecorder) StartRecording(ctx context.Context, udid, outputPath string) (Recording, error) {
	session, err := r.Controller.StartRecording(ctx, udid, outputPath)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Config locates the runner artifacts and bounds each phase of a run.
type Config struct {
	XcrunPath        string
	ManifestTemplate string
	RunnerAppPath    string
	HostAppPath      string
	WorkDir          string
	RecordingDir     string
	TestSelector     string

	RunnerTimeout         time.Duration
	ResultTimeout         time.Duration
	PollInterval          time.Duration
	RecordingStartTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.XcrunPath == "" {
		c.XcrunPath = constants.DefaultXcrunPath
	}
	if c.WorkDir == "" {
		c.WorkDir = os.TempDir()
	}
	if c.RecordingDir == "" {
		c.RecordingDir = os.TempDir()
	}
	if c.TestSelector == "" {
		c.TestSelector = constants.DefaultTestSelector
	}
	if c.RunnerTimeout <= 0 {
		c.RunnerTimeout = constants.DefaultRunnerTimeout
	}
	if c.ResultTimeout <= 0 {
		c.ResultTimeout = constants.DefaultResultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = constants.ResultPollInterval
	}
	if c.RecordingStartTimeout <= 0 {
		c.RecordingStartTimeout = constants.RecordingStartTimeout
	}
	return c
}

// Request is one call to Execute.
type Request struct {
	Script   *script.Script
	DeviceID string

	// SessionToken scopes the run's files. Empty means a fresh UUID.
	// Concurrent runs must use distinct tokens.
	SessionToken string

	// Timeout bounds the runner invocation. Zero uses Config.RunnerTimeout.
	Timeout time.Duration
}

// Driver executes scripts through the external runner.
type Driver struct {
	cfg      Config
	runner   process.Runner
	recorder Recorder
	logger   zerolog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithRecorder sets the recorder used for scripts with RecordVideo.
func WithRecorder(recorder Recorder) Option {
	return func(d *Driver) {
		d.recorder = recorder
	}
}

// New creates a Driver.
func New(cfg Config, runner process.Runner, opts ...Option) *Driver {
	d := &Driver{
		cfg:    cfg.withDefaults(),
		runner: runner,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// run tracks one Execute call.
type run struct {
	sess   *Session
	rec    Recording
	state  State
	logger zerolog.Logger
	once   sync.Once
}

func (r *run) transition(to State) {
	r.logger.Debug().
		Str("from", r.state.String()).
		Str("to", to.String()).
		Msg("run state")
	r.state = to
}

// cleanup stops any recording and removes the working directory. It runs
// once; the recording file lives outside the working directory and is kept.
func (r *run) cleanup(ctx context.Context) {
	r.once.Do(func() {
		if r.rec != nil {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RecorderStopTimeout)
			if err := r.rec.Stop(stopCtx); err != nil {
				r.logger.Warn().Err(err).Msg("failed to stop recording")
			}
			cancel()
		}
		if err := r.sess.Cleanup(); err != nil {
			r.logger.Warn().Err(err).Str("work_dir", r.sess.WorkDir).Msg("failed to clean up session")
		}
		r.transition(StateCleanedUp)
	})
}

// Execute runs req.Script on req.DeviceID and returns the runner's result.
//
// If the runner wrote a result file it is returned as-is, whatever the
// runner's exit code. Otherwise a result is synthesized from the exit code.
// The working directory is removed and any recording stopped before Execute
// returns, on every path.
func (d *Driver) Execute(ctx context.Context, req *Request) (*script.ScriptResult, error) {
	if req == nil || req.Script == nil {
		return nil, simerrors.Wrap(simerrors.ErrScriptMalformed, "no script")
	}
	if req.DeviceID == "" {
		return nil, simerrors.Wrap(simerrors.ErrEmptyValue, "device id")
	}
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	token := req.SessionToken
	if token == "" {
		token = uuid.NewString()
	}
	logger := d.logger.With().Str("session", token).Str("device", req.DeviceID).Logger()

	sess, err := NewSession(d.cfg.WorkDir, token)
	if err != nil {
		return nil, err
	}
	r := &run{sess: sess, state: StateIdle, logger: logger}
	defer r.cleanup(ctx)
	r.transition(StateWorkingDirPrepared)

	if err := d.prepare(r, req.Script); err != nil {
		return nil, err
	}

	if req.Script.RecordVideo {
		if err := d.startRecording(ctx, r, req.DeviceID); err != nil {
			return nil, err
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = d.cfg.RunnerTimeout
	}
	r.transition(StateRunnerInvoked)
	logger.Info().Dur("timeout", timeout).Int("actions", len(req.Script.Actions)).Msg("invoking UI test runner")

	res, err := d.runner.Run(ctx, d.cfg.XcrunPath, d.runnerArgs(sess, req.DeviceID), nil, timeout)
	if err != nil {
		return nil, simerrors.Wrap(err, "UI test runner")
	}

	result, err := d.collect(ctx, r, res)
	if err != nil {
		return nil, err
	}

	r.cleanup(ctx)
	if r.rec != nil {
		result.VideoPath = r.rec.OutputPath()
	}
	return result, nil
}

// prepare lays out the working directory: runner artifacts, script file,
// and the rewritten manifest.
func (d *Driver) prepare(r *run, s *script.Script) error {
	if err := materialize(r.sess.ProductsDir, d.cfg.HostAppPath, d.cfg.RunnerAppPath); err != nil {
		return err
	}

	data, err := script.Encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.sess.ScriptPath, data, filePerm); err != nil {
		return simerrors.Wrap(err, "failed to write script")
	}
	r.transition(StateScriptWritten)

	rw, err := RewriteManifest(d.cfg.ManifestTemplate, r.sess.ManifestPath, r.sess.WorkDir, map[string]string{
		constants.EnvScriptPath: r.sess.ScriptPath,
		constants.EnvResultPath: r.sess.ResultPath,
	})
	if err != nil {
		return err
	}
	if !rw.RootReplaced {
		r.logger.Warn().
			Str("template", d.cfg.ManifestTemplate).
			Msg("manifest template has no " + constants.ManifestRootPlaceholder + " placeholder")
	}
	r.transition(StateManifestRewritten)
	return nil
}

func (d *Driver) startRecording(ctx context.Context, r *run, udid string) error {
	if d.recorder == nil {
		return simerrors.Wrap(simerrors.ErrRecordingFailed, "no recorder configured")
	}

	if err := os.MkdirAll(d.cfg.RecordingDir, dirPerm); err != nil {
		return simerrors.Wrapf(simerrors.ErrRecordingFailed, "create recording directory: %v", err)
	}
	r.sess.RecordingPath = r.sess.RecordingFile(d.cfg.RecordingDir)
	rec, err := d.recorder.StartRecording(ctx, udid, r.sess.RecordingPath)
	if err != nil {
		return err
	}
	r.rec = rec

	if err := rec.WaitUntilStarted(ctx, d.cfg.RecordingStartTimeout); err != nil {
		return err
	}
	r.transition(StateRecordingStarted)
	return nil
}

func (d *Driver) runnerArgs(sess *Session, udid string) []string {
	return []string{
		"xcodebuild",
		"test-without-building",
		"-xctestrun", sess.ManifestPath,
		"-destination", "platform=iOS Simulator,id=" + udid,
		"-only-testing:" + d.cfg.TestSelector,
	}
}

// collect returns the runner's own result when it wrote one, and a
// synthesized result otherwise.
func (d *Driver) collect(ctx context.Context, r *run, res *process.Result) (*script.ScriptResult, error) {
	result, err := NewResultReader(r.sess.ResultPath, d.cfg.PollInterval).Wait(ctx, d.cfg.ResultTimeout)
	switch {
	case err == nil:
		r.transition(StateResultAvailable)
		if !res.Success() {
			r.logger.Debug().Int("exit_code", res.ExitCode).Msg("runner exited non-zero, using its result file")
		}
		return result, nil
	case errors.Is(err, simerrors.ErrResultTimeout):
		r.transition(StateResultSynthesized)
		return synthesize(res), nil
	default:
		return nil, err
	}
}

// synthesize builds a result from the runner's exit status alone.
func synthesize(res *process.Result) *script.ScriptResult {
	if res.Success() {
		return &script.ScriptResult{Success: true, Results: []script.ActionResult{}}
	}

	msg := fmt.Sprintf("%s (exit %d)", simerrors.ErrExternalRunFailed, res.ExitCode)
	if stderr := tail(strings.TrimSpace(res.Stderr), maxStderrTail); stderr != "" {
		msg += ": " + stderr
	}
	return &script.ScriptResult{Success: false, Results: []script.ActionResult{}, Error: msg}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mrz1836/simdriver/internal/constants"
	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// State is a step of one driver run.
type State int

// Run states, in order. Any state may jump straight to StateCleanedUp.
const (
	StateIdle State = iota
	StateWorkingDirPrepared
	StateScriptWritten
	StateManifestRewritten
	StateRecordingStarted
	StateRunnerInvoked
	StateResultAvailable
	StateResultSynthesized
	StateCleanedUp
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWorkingDirPrepared:
		return "working_dir_prepared"
	case StateScriptWritten:
		return "script_written"
	case StateManifestRewritten:
		return "manifest_rewritten"
	case StateRecordingStarted:
		return "recording_started"
	case StateRunnerInvoked:
		return "runner_invoked"
	case StateResultAvailable:
		return "result_available"
	case StateResultSynthesized:
		return "result_synthesized"
	case StateCleanedUp:
		return "cleaned_up"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the working set of one run: a private directory holding the
// script, result, and manifest files, plus an optional recording path that
// lives outside it.
type Session struct {
	Token         string
	WorkDir       string
	ScriptPath    string
	ResultPath    string
	ManifestPath  string
	ProductsDir   string
	RecordingPath string

	cleanupOnce sync.Once
	cleanupErr  error
}

// NewSession creates baseDir/simdriver-<token>. The directory must not exist
// yet; a collision means two runs share a token and returns ErrSessionExists.
func NewSession(baseDir, token string) (*Session, error) {
	if token == "" {
		return nil, simerrors.Wrap(simerrors.ErrEmptyValue, "session token")
	}
	if err := ValidateToken(token); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(baseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create work directory root: %w", err)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory: %w", err)
	}
	workDir := filepath.Join(absBase, constants.SessionDirPrefix+token)

	if err := os.Mkdir(workDir, dirPerm); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, simerrors.Wrapf(simerrors.ErrSessionExists, "session %s", token)
		}
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &Session{
		Token:        token,
		WorkDir:      workDir,
		ScriptPath:   filepath.Join(workDir, constants.ScriptFileName),
		ResultPath:   filepath.Join(workDir, constants.ResultFileName),
		ManifestPath: filepath.Join(workDir, constants.ManifestFileName),
		ProductsDir:  filepath.Join(workDir, constants.ProductsDir),
	}, nil
}

// ValidateToken rejects tokens that would place the working directory or
// recording outside their configured roots.
func ValidateToken(token string) error {
	if strings.ContainsAny(token, `/\`) || strings.Contains(token, "..") {
		return simerrors.Wrapf(simerrors.ErrInvalidSessionToken, "%q", token)
	}
	return nil
}

// RecordingFile returns the recording path for this session under dir.
func (s *Session) RecordingFile(dir string) string {
	return filepath.Join(dir, constants.SessionDirPrefix+s.Token+constants.RecordingExtension)
}

// Cleanup removes the working directory. Only the first call does any work;
// later calls return the first call's error.
func (s *Session) Cleanup() error {
	s.cleanupOnce.Do(func() {
		if err := os.RemoveAll(s.WorkDir); err != nil {
			s.cleanupErr = fmt.Errorf("failed to remove session directory: %w", err)
		}
	})
	return s.cleanupErr
}

package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/mrz1836/simdriver/internal/constants"
	simerrors "github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/script"
)

// ResultReader polls for the runner's result file.
type ResultReader struct {
	path     string
	interval time.Duration
}

// NewResultReader creates a reader for path polling every interval.
func NewResultReader(path string, interval time.Duration) *ResultReader {
	if interval <= 0 {
		interval = constants.ResultPollInterval
	}
	return &ResultReader{path: path, interval: interval}
}

// Wait polls until the result file decodes or timeout passes. It returns
// ErrResultTimeout if the file never appeared and ErrResultMalformed if it
// appeared but never decoded. The first attempt happens immediately.
func (r *ResultReader) Wait(ctx context.Context, timeout time.Duration) (*script.ScriptResult, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var lastErr error
	for {
		result, err := r.read()
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, simerrors.Wrapf(simerrors.ErrResultTimeout, "no result file after %s", timeout)
		case <-ticker.C:
		}
	}
}

func (r *ResultReader) read() (*script.ScriptResult, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, simerrors.Wrapf(simerrors.ErrResultMalformed, "read result: %v", err)
	}
	return script.DecodeResult(data)
}

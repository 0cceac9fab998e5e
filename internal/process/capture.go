package process

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
)

// accumulator is a mutex-protected output buffer shared between a drain
// goroutine and readers of partial output.
type accumulator struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (a *accumulator) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Write(p)
}

func (a *accumulator) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.String()
}

// drain copies r into acc until EOF or the read deadline passes.
func drain(r *os.File, acc *accumulator) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = acc.Write(buf[:n])
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, os.ErrClosed):
			return nil
		default:
			return err
		}
	}
}

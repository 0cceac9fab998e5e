package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// SpinnerInterval is the animation frame interval.
const SpinnerInterval = 100 * time.Millisecond

// ElapsedTimeThreshold is the duration after which elapsed time is shown.
// Runner invocations routinely take longer than this.
const ElapsedTimeThreshold = 10 * time.Second

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"} //nolint:gochecknoglobals // Package-level constant for spinner animation

// TerminalSpinner animates a single status line on w.
type TerminalSpinner struct {
	w       io.Writer
	styles  *OutputStyles
	message string
	started time.Time
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewTerminalSpinner creates a spinner that writes to w.
func NewTerminalSpinner(w io.Writer) *TerminalSpinner {
	return &TerminalSpinner{
		w:      w,
		styles: NewOutputStyles(),
	}
}

// Start begins the animation. Calling Start on a running spinner only
// replaces the message.
func (s *TerminalSpinner) Start(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.running {
		return
	}
	s.started = time.Now()
	s.running = true
	s.done = make(chan struct{})

	go s.animate(ctx, s.done)
}

// UpdateMessage changes the message without restarting the animation.
func (s *TerminalSpinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *TerminalSpinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	_, _ = fmt.Fprint(s.w, "\r\033[K")
	s.mu.Unlock()
}

func (s *TerminalSpinner) animate(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(SpinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-done:
			return
		case <-ctx.Done():
			s.Stop()
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.running {
				s.mu.Unlock()
				return
			}
			msg := s.message
			if elapsed := time.Since(s.started); elapsed > ElapsedTimeThreshold {
				msg = fmt.Sprintf("%s %s", msg, formatElapsedTime(elapsed))
			}
			// Frame, space and a one-cell margin.
			msg = truncateToWidth(msg, getTerminalWidth()-4)
			glyph := s.styles.Info.Render(spinnerFrames[frame%len(spinnerFrames)])
			_, _ = fmt.Fprintf(s.w, "\r\033[K%s %s", glyph, msg)
			s.mu.Unlock()
		}
	}
}

func formatElapsedTime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%ds elapsed)", int(d.Seconds()))
	}
	return fmt.Sprintf("(%dm %ds elapsed)", int(d.Minutes()), int(d.Seconds())%60)
}

// getTerminalWidth returns the width of stderr, or 80.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd())) //nolint:gosec // G115: file descriptors fit in int
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// SpinnerAdapter satisfies Spinner with a TerminalSpinner.
type SpinnerAdapter struct {
	spinner *TerminalSpinner
	cancel  context.CancelFunc
}

// NewSpinnerAdapter starts a spinner on w bound to ctx.
func NewSpinnerAdapter(ctx context.Context, w io.Writer, msg string) *SpinnerAdapter {
	ctx, cancel := context.WithCancel(ctx)
	s := NewTerminalSpinner(w)
	s.Start(ctx, msg)
	return &SpinnerAdapter{spinner: s, cancel: cancel}
}

// Update changes the spinner message.
func (a *SpinnerAdapter) Update(msg string) {
	a.spinner.UpdateMessage(msg)
}

// Stop terminates the spinner.
func (a *SpinnerAdapter) Stop() {
	a.cancel()
	a.spinner.Stop()
}

// NoopSpinner does nothing; JSON output has no progress line.
type NoopSpinner struct{}

// Update is a no-op.
func (*NoopSpinner) Update(_ string) {}

// Stop is a no-op.
func (*NoopSpinner) Stop() {}

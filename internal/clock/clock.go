// Package clock lets capture commands name their output files from an
// injectable time source.
package clock

import "time"

// CaptureLayout is the timestamp layout used in default capture file names.
const CaptureLayout = "20060102-150405"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant.
type Fixed time.Time

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// CaptureName returns prefix + timestamp + ext, e.g.
// "screenshot-20260118-093000.png".
func CaptureName(c Clock, prefix, ext string) string {
	return prefix + c.Now().Format(CaptureLayout) + ext
}

var (
	_ Clock = RealClock{}
	_ Clock = Fixed{}
)

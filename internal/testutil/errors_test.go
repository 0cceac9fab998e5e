package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestMockErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrMockRunnerCrashed", ErrMockRunnerCrashed, "runner crashed"},
		{"ErrMockLaunch", ErrMockLaunch, "mock launch failed"},
		{"ErrMockRecorder", ErrMockRecorder, "mock recorder failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.want)
			}
			if !errors.Is(fmt.Errorf("wrapped: %w", tt.err), tt.err) {
				t.Errorf("%s should survive wrapping", tt.name)
			}
		})
	}
}

func TestWriteExecutable(t *testing.T) {
	path := WriteExecutable(t, "fake", "echo hi")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("expected executable bit, got %v", info.Mode())
	}
	data, err := os.ReadFile(path) //#nosec G304 -- test temp file
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "#!/bin/sh\necho hi\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path := WriteFile(t, dir, "a.txt", "content")

	data, err := os.ReadFile(path) //#nosec G304 -- test temp file
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("got %q", data)
	}
}

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteExecutable writes a /bin/sh script named name into a fresh temp
// directory and returns its absolute path.
func WriteExecutable(t testing.TB, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	content := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(content), 0o700); err != nil { //#nosec G306 -- test helper needs an executable
		t.Fatalf("failed to write fake executable %s: %v", name, err)
	}
	return path
}

// WriteFile writes content to dir/name, creating dir, and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

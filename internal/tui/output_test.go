package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

func TestNewOutput_FormatSelection(t *testing.T) {
	t.Run("json format returns JSONOutput", func(t *testing.T) {
		var buf bytes.Buffer
		_, ok := NewOutput(&buf, FormatJSON).(*JSONOutput)
		assert.True(t, ok)
	})

	t.Run("text format returns TTYOutput", func(t *testing.T) {
		var buf bytes.Buffer
		_, ok := NewOutput(&buf, FormatText).(*TTYOutput)
		assert.True(t, ok)
	})

	t.Run("auto on a non-terminal is JSON", func(t *testing.T) {
		var buf bytes.Buffer
		_, ok := NewOutput(&buf, FormatAuto).(*JSONOutput)
		assert.True(t, ok)
	})
}

func TestIsTTY(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, isTTY(&buf))
	assert.False(t, isTTY((*os.File)(nil)))

	f, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.False(t, isTTY(f))
}

func TestTTYOutput_Messages(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name  string
		write func(o *TTYOutput)
		want  string
	}{
		{"success", func(o *TTYOutput) { o.Success("booted") }, "✓ booted"},
		{"warning", func(o *TTYOutput) { o.Warning("slow") }, "⚠ slow"},
		{"info", func(o *TTYOutput) { o.Info("hello") }, "ℹ hello"},
		{"error", func(o *TTYOutput) { o.Error(simerrors.ErrNoBootedSimulator) }, "✗ no booted simulator"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.write(NewTTYOutput(&buf))
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestTTYOutput_ErrorWithSuggestion(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	NewTTYOutput(&buf).Error(WithSuggestion(fmt.Errorf("resolve: %w", simerrors.ErrNoBootedSimulator)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "resolve: no booted simulator")
	assert.Contains(t, lines[1], "▸ Try: Boot one with 'simdriver simulators boot <udid>'")
}

func TestTTYOutput_Table(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer

	NewTTYOutput(&buf).Table(
		[]string{"NAME", "STATE"},
		[][]string{
			{"iPhone 15", "Booted"},
			{"iPad", "Shutdown"},
			{"short"},
		},
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "NAME       STATE", lines[0])
	assert.Equal(t, "iPhone 15  Booted", lines[1])
	assert.Equal(t, "iPad       Shutdown", lines[2])
	assert.Equal(t, "short", lines[3])
}

func TestTTYOutput_TableNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTTYOutput(&buf).Table(nil, [][]string{{"x"}})
	assert.Empty(t, buf.String())
}

func TestJSONOutput_Messages(t *testing.T) {
	var buf bytes.Buffer
	out := NewJSONOutput(&buf)
	out.Success("done")
	out.Warning("careful")
	out.Info("fyi")

	dec := json.NewDecoder(&buf)
	for _, want := range []jsonMessage{
		{Type: "success", Message: "done"},
		{Type: "warning", Message: "careful"},
		{Type: "info", Message: "fyi"},
	} {
		var got jsonMessage
		require.NoError(t, dec.Decode(&got))
		assert.Equal(t, want, got)
	}
}

func TestJSONOutput_Error(t *testing.T) {
	var buf bytes.Buffer
	err := WithSuggestion(fmt.Errorf("device ABC: %w", simerrors.ErrSimulatorNotFound)).WithContext("ABC")

	NewJSONOutput(&buf).Error(err)

	var got jsonError
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "error", got.Type)
	assert.Equal(t, "device ABC: simulator not found (ABC)", got.Message)
	assert.Equal(t, "Run 'simdriver simulators list' to see available devices.", got.Suggestion)
	assert.Equal(t, "ABC", got.Context)
	assert.Equal(t, "device ABC: simulator not found", got.Details)
}

func TestJSONOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	NewJSONOutput(&buf).Table([]string{"a", "b"}, [][]string{{"1", "2"}, {"3"}})

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{{"a": "1", "b": "2"}, {"a": "3", "b": ""}}, got)
}

func TestJSONOutput_TableNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewJSONOutput(&buf).Table(nil, nil)
	assert.JSONEq(t, "[]", buf.String())
}

func TestJSONOutput_Spinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONOutput(&buf).Spinner(context.Background(), "working")
	s.Update("still working")
	s.Stop()
	assert.Empty(t, buf.String())
}

func TestSpinnerAdapter_StopTwice(t *testing.T) {
	var buf bytes.Buffer
	var s Spinner = NewSpinnerAdapter(context.Background(), &buf, "Loading...")
	s.Update("Updated")
	s.Stop()
	s.Stop()
}

func TestSpinner_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	s := NewTerminalSpinner(&buf)
	s.Start(ctx, "running")
	cancel()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.running
	}, time.Second, 10*time.Millisecond)
}

func TestSuggestionForError(t *testing.T) {
	assert.Empty(t, SuggestionForError(nil))
	assert.Empty(t, SuggestionForError(fmt.Errorf("something else")))
	assert.Contains(t, SuggestionForError(fmt.Errorf("doctor: %w", simerrors.ErrMissingRequiredTools)), "xcode-select")
}

func TestWithSuggestion_KeepsChain(t *testing.T) {
	assert.Nil(t, WithSuggestion(nil))

	err := WithSuggestion(fmt.Errorf("boot: %w", simerrors.ErrSimulatorNotFound))
	require.ErrorIs(t, err, simerrors.ErrSimulatorNotFound)
	assert.Same(t, err, WithSuggestion(err), "already actionable errors are returned as-is")
}

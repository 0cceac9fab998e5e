package constants

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscalationConstants(t *testing.T) {
	t.Run("escalation fits inside the documented overhead", func(t *testing.T) {
		assert.Equal(t, 500*time.Millisecond, GracefulTerminateWait)
		assert.Equal(t, 100*time.Millisecond, InterruptWait)
		assert.Less(t, GracefulTerminateWait+InterruptWait+DrainGrace, 1100*time.Millisecond)
	})

	t.Run("result polling is finer than the result deadline", func(t *testing.T) {
		assert.Equal(t, 100*time.Millisecond, ResultPollInterval)
		assert.Less(t, ResultPollInterval, DefaultResultTimeout)
	})

	t.Run("recording settle delay is below start timeout", func(t *testing.T) {
		assert.Less(t, RecordingSettleDelay, RecordingStartTimeout)
	})
}

func TestManifestConstants(t *testing.T) {
	assert.Equal(t, "__TESTROOT__", ManifestRootPlaceholder)
	assert.Equal(t, "UI_TEST_SCRIPT_PATH", EnvScriptPath)
	assert.Equal(t, "UI_TEST_RESULT_PATH", EnvResultPath)
	assert.True(t, strings.HasPrefix(ManifestEnvAnchor, "<key>"))
}

func TestRunnerConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"DefaultTestSelector", DefaultTestSelector, "SimDriverUITests/DriverTests/testScript"},
		{"DefaultVideoCodec", DefaultVideoCodec, "h264"},
		{"SessionDirPrefix", SessionDirPrefix, "simdriver-"},
		{"ScriptFileName", ScriptFileName, "script.json"},
		{"ResultFileName", ResultFileName, "result.json"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.constant)
		})
	}
}

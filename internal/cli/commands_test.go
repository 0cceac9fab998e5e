//go:build unix

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/simdriver/internal/config"
	"github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/script"
	"github.com/mrz1836/simdriver/internal/simulator"
	"github.com/mrz1836/simdriver/internal/testutil"
)

const testDevicesJSON = `{
  "devices": {
    "com.apple.CoreSimulator.SimRuntime.iOS-17-2": [
      {"udid": "B-2", "name": "iPhone 15", "state": "Booted", "isAvailable": true},
      {"udid": "S-1", "name": "iPad Air", "state": "Shutdown", "isAvailable": true}
    ]
  }
}`

const passingResult = `{"success":true,"results":[
  {"actionIndex":0,"success":true},
  {"actionIndex":1,"success":true}
]}`

const failingResult = `{"success":false,"error":"element not found","results":[
  {"actionIndex":0,"success":false,"error":"element not found"}
]}`

const testScriptJSON = `{"bundleId":"com.example.app","actions":[
  {"type":"tap","target":{"type":"identifier","value":"login"}},
  {"type":"sleep","duration":0.1}
]}`

const testScriptYAML = `bundleId: com.example.app
actions:
  - type: tap
    target:
      type: identifier
      value: login
  - type: sleep
    duration: 0.1
`

const testManifest = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>SimDriverUITests</key>
	<dict>
		<key>TestHostPath</key>
		<string>__TESTROOT__/Debug-iphonesimulator/SimDriverHost.app</string>
		<key>EnvironmentVariables</key>
		<dict/>
	</dict>
</dict>
</plist>
`

// cliEnv is a sandboxed simdriver home plus a fake xcrun answering simctl,
// xcodebuild and version checks.
type cliEnv struct {
	home       string
	dir        string
	xcrun      string
	calls      string
	resultPath string
	workDir    string
	manifest   string
	runnerApp  string
	hostApp    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	dir := t.TempDir()
	e := &cliEnv{
		home:       filepath.Join(dir, "home"),
		dir:        dir,
		calls:      filepath.Join(dir, "calls.log"),
		resultPath: filepath.Join(dir, "result.json"),
		workDir:    filepath.Join(dir, "work"),
	}
	require.NoError(t, os.MkdirAll(e.workDir, 0o750))
	devices := testutil.WriteFile(t, dir, "devices.json", testDevicesJSON)
	installed := filepath.Join(dir, "installed")
	e.setResult(t, passingResult)

	body := fmt.Sprintf(`echo "$*" >> %[1]q
case "$1" in
  --version) echo "xcrun version 70." ;;
  xcodebuild)
    case "$2" in
      -version) echo "Xcode 15.2" ;;
      test-without-building) cp %[2]q "$(dirname "$4")/result.json" ;;
    esac
    ;;
  simctl)
    case "$2" in
      help) echo "PROJECT:CoreSimulator-1000.1" ;;
      list) cat %[3]q ;;
      get_app_container) [ -f %[4]q ] || exit 2 ;;
      install) touch %[4]q ;;
      launch) echo "$4: 1234" ;;
      terminate)
        if [ "$4" = "com.missing" ]; then echo "not running" >&2; exit 3; fi
        ;;
      io)
        case "$4" in
          screenshot) echo png > "$5" ;;
          recordVideo)
            trap 'echo video > "$7"; exit 0' INT
            while :; do sleep 0.05; done
            ;;
        esac
        ;;
    esac
    ;;
esac
exit 0`, e.calls, e.resultPath, devices, installed)
	e.xcrun = testutil.WriteExecutable(t, "xcrun", body)

	artifacts := filepath.Join(dir, "artifacts")
	e.manifest = testutil.WriteFile(t, artifacts, "SimDriver.xctestrun", testManifest)
	e.hostApp = filepath.Join(artifacts, "SimDriverHost.app")
	e.runnerApp = filepath.Join(artifacts, "SimDriverUITests-Runner.app")
	testutil.WriteFile(t, e.hostApp, "Info.plist", "host")
	testutil.WriteFile(t, e.runnerApp, "Info.plist", "runner")

	t.Setenv("SIMDRIVER_HOME", e.home)
	t.Setenv("SIMDRIVER_OUTPUT", "")
	t.Setenv("SIMDRIVER_SIMULATOR_XCRUN_PATH", e.xcrun)
	t.Setenv("SIMDRIVER_DRIVER_WORK_DIR", e.workDir)
	t.Setenv("SIMDRIVER_DRIVER_POLL_INTERVAL", "20ms")
	t.Setenv("SIMDRIVER_DRIVER_RESULT_TIMEOUT", "2s")
	t.Setenv("SIMDRIVER_RECORDING_SETTLE_DELAY", "50ms")
	return e
}

func (e *cliEnv) setResult(t *testing.T, result string) {
	t.Helper()
	require.NoError(t, os.WriteFile(e.resultPath, []byte(result), 0o600))
}

func (e *cliEnv) callLog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.calls)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func (e *cliEnv) artifactFlags() []string {
	return []string{"--manifest", e.manifest, "--runner-app", e.runnerApp, "--host-app", e.hostApp}
}

// execute runs the root command and returns stdout.
func (e *cliEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "1.2.3"})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	CloseLogFile()
	return out.String(), err
}

func TestSimulatorsList(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.execute(t, "simulators", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "UDID")
	assert.Contains(t, out, "iPhone 15")
	assert.Contains(t, out, "iPad Air")
	assert.Contains(t, out, "iOS 17.2")
}

func TestSimulatorsList_BootedJSON(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.execute(t, "simulators", "list", "--booted", "-o", "json")
	require.NoError(t, err)

	var sims []simulator.Simulator
	require.NoError(t, json.Unmarshal([]byte(out), &sims))
	require.Len(t, sims, 1)
	assert.Equal(t, "B-2", sims[0].UDID)
}

func TestSimulatorsBootAndShutdown(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.execute(t, "simulators", "boot", "S-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulator S-1 booted")

	out, err = e.execute(t, "sim", "shutdown", "S-1", "--output", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"udid":"S-1","status":"shut_down"}`, out)

	calls := e.callLog(t)
	assert.Contains(t, calls, "simctl boot S-1")
	assert.Contains(t, calls, "simctl shutdown S-1")
}

func TestAppCommands(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.execute(t, "app", "launch", "com.example.app")
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.app launched on B-2")

	out, err = e.execute(t, "app", "install", e.hostApp, "--device", "S-1", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"installed"`)
	assert.Contains(t, e.callLog(t), "simctl install S-1 "+e.hostApp)

	_, err = e.execute(t, "app", "terminate", "com.missing")
	require.ErrorIs(t, err, errors.ErrSimulatorCommand)
	assert.Equal(t, ExitError, ExitCodeForError(err))
}

func TestScreenshotCommand(t *testing.T) {
	e := newCLIEnv(t)
	path := filepath.Join(e.dir, "shots", "home.png")

	out, err := e.execute(t, "screenshot", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Screenshot saved to "+path)
	assert.FileExists(t, path)
}

func TestRunCommand_JSONScriptPasses(t *testing.T) {
	e := newCLIEnv(t)
	scriptPath := testutil.WriteFile(t, e.dir, "login.json", testScriptJSON)

	args := append([]string{"run", scriptPath, "--session", "cli-pass"}, e.artifactFlags()...)
	out, err := e.execute(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "ACTION")
	assert.Contains(t, out, "Tap")
	assert.Contains(t, out, `identifier="login"`)
	assert.Contains(t, out, "All 2 actions passed")

	calls := e.callLog(t)
	assert.Contains(t, calls, "xcodebuild test-without-building -xctestrun")
	assert.Contains(t, calls, "id=B-2")

	entries, err := os.ReadDir(e.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "session directory is removed after the run")
}

func TestRunCommand_YAMLScriptJSONOutput(t *testing.T) {
	e := newCLIEnv(t)
	scriptPath := testutil.WriteFile(t, e.dir, "login.yml", testScriptYAML)

	args := append([]string{"run", scriptPath, "-o", "json", "--device", "S-1"}, e.artifactFlags()...)
	out, err := e.execute(t, args...)
	require.NoError(t, err)

	var result script.ScriptResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Len(t, result.Results, 2)
	assert.Contains(t, e.callLog(t), "id=S-1")
}

func TestRunCommand_FailedScript(t *testing.T) {
	e := newCLIEnv(t)
	e.setResult(t, failingResult)
	scriptPath := testutil.WriteFile(t, e.dir, "login.json", testScriptJSON)

	args := append([]string{"run", scriptPath}, e.artifactFlags()...)
	out, err := e.execute(t, args...)
	require.ErrorIs(t, err, errors.ErrScriptFailed)
	assert.Equal(t, ExitError, ExitCodeForError(err))
	assert.Contains(t, out, "element not found")
	assert.Contains(t, out, "failed")
}

func TestRunCommand_RecordsVideo(t *testing.T) {
	e := newCLIEnv(t)
	scriptPath := testutil.WriteFile(t, e.dir, "login.json", testScriptJSON)

	args := append([]string{"run", scriptPath, "--record", "--session", "rec", "-o", "json"}, e.artifactFlags()...)
	out, err := e.execute(t, args...)
	require.NoError(t, err)

	var result script.ScriptResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	want := filepath.Join(e.home, "recordings", "simdriver-rec.mp4")
	assert.Equal(t, want, result.VideoPath)
	assert.FileExists(t, want)
}

func TestRunCommand_InstallsHostApp(t *testing.T) {
	e := newCLIEnv(t)
	scriptPath := testutil.WriteFile(t, e.dir, "login.json", testScriptJSON)

	args := append([]string{"run", scriptPath, "--install-host"}, e.artifactFlags()...)
	_, err := e.execute(t, args...)
	require.NoError(t, err)

	calls := e.callLog(t)
	assert.Contains(t, calls, "simctl get_app_container B-2 com.simdriver.host")
	assert.Contains(t, calls, "simctl install B-2 "+e.hostApp)
}

func TestRunCommand_InputErrors(t *testing.T) {
	e := newCLIEnv(t)

	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{name: "unsupported extension", file: "script.txt", content: testScriptJSON, wantErr: errors.ErrUnsupportedScriptFormat},
		{name: "unknown action type", file: "bad.json", content: `{"bundleId":"x","actions":[{"type":"fly"}]}`, wantErr: errors.ErrScriptMalformed},
		{name: "missing bundle id", file: "bad.yaml", content: "actions: []\n", wantErr: errors.ErrScriptMalformed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := testutil.WriteFile(t, e.dir, tc.file, tc.content)
			args := append([]string{"run", path}, e.artifactFlags()...)

			_, err := e.execute(t, args...)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
		})
	}

	assert.NotContains(t, e.callLog(t), "xcodebuild", "bad scripts never reach the runner")
}

func TestRunCommand_MissingArtifacts(t *testing.T) {
	e := newCLIEnv(t)
	scriptPath := testutil.WriteFile(t, e.dir, "login.json", testScriptJSON)

	_, err := e.execute(t, "run", scriptPath, "--manifest", e.manifest,
		"--runner-app", filepath.Join(e.dir, "nope.app"), "--host-app", e.hostApp)
	require.ErrorIs(t, err, errors.ErrMissingRunnerArtifact)
}

func TestRecordCommand_Duration(t *testing.T) {
	e := newCLIEnv(t)
	path := filepath.Join(e.dir, "demo.mp4")

	out, err := e.execute(t, "record", path, "--duration", "200ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Recording saved to "+path)
	assert.FileExists(t, path)
	assert.Contains(t, e.callLog(t), "simctl io B-2 recordVideo --codec=h264 --force "+path)
}

func TestConfigShow(t *testing.T) {
	e := newCLIEnv(t)
	testutil.WriteFile(t, e.home, "config.yaml", "recording:\n  codec: hevc\n")

	out, err := e.execute(t, "config", "show", "-o", "json")
	require.NoError(t, err)

	var doc annotatedConfig
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	byKey := map[string]ConfigEntry{}
	for _, entry := range doc.Values {
		byKey[entry.Key] = entry
	}
	assert.Equal(t, ConfigEntry{Key: "recording.codec", Value: "hevc", Source: SourceGlobal}, byKey["recording.codec"])
	assert.Equal(t, SourceEnv, byKey["simulator.xcrun_path"].Source)
	assert.Equal(t, e.xcrun, byKey["simulator.xcrun_path"].Value)
	assert.Equal(t, SourceDefault, byKey["simulator.host_bundle_id"].Source)
	assert.Equal(t, filepath.Join(e.home, "config.yaml"), doc.Files.Global)

	text, err := e.execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, text, "simulator:")
	assert.Contains(t, text, "codec: hevc")
	assert.Contains(t, text, "# global")
	assert.Contains(t, text, "(not set)")
}

func TestDoctor(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "xcodebuild")
	assert.Contains(t, out, "15.2")
	assert.Contains(t, out, "All tools found")
}

func TestDoctor_MissingXcrun(t *testing.T) {
	newCLIEnv(t)
	t.Setenv("SIMDRIVER_SIMULATOR_XCRUN_PATH", "/nonexistent/xcrun")

	e := &cliEnv{}
	_, err := e.execute(t, "doctor")
	require.ErrorIs(t, err, errors.ErrMissingRequiredTools)

	out, err := e.execute(t, "doctor", "-o", "json")
	require.ErrorIs(t, err, errors.ErrJSONErrorOutput)
	require.ErrorIs(t, err, errors.ErrMissingRequiredTools)

	var result config.ToolDetectionResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.HasMissingRequired)
	assert.Len(t, result.MissingRequiredTools(), 3)
}

func TestVersionCommand(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.execute(t, "version", "-o", "json")
	require.NoError(t, err)

	var v versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "1.2.3", v.Version)
	assert.Equal(t, "none", v.Commit)
	assert.True(t, strings.HasPrefix(v.GoVersion, "go"))
}

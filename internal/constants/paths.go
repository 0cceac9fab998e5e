package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.simdriver/logs/simdriver.log
	CLILogFileName = "simdriver.log"
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the size at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 5

	// LogMaxAgeDays is how long rotated files are kept.
	LogMaxAgeDays = 28

	// LogCompress gzips rotated files.
	LogCompress = true
)

// HomeEnvVar overrides the simdriver home directory (~/.simdriver).
const HomeEnvVar = "SIMDRIVER_HOME"

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file.
	// This file is located in the simdriver home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the project-level configuration directory.
	ProjectConfigDir = ".simdriver"

	// ProjectConfigName is the name of the project configuration file inside ProjectConfigDir.
	ProjectConfigName = "config.yaml"
)

// Run session layout.
const (
	// SessionDirPrefix prefixes each run's working directory and recording file.
	SessionDirPrefix = "simdriver-"

	// ScriptFileName is the request mailbox file written before the runner starts.
	ScriptFileName = "script.json"

	// ResultFileName is the response mailbox file written by the runner.
	ResultFileName = "result.json"

	// ManifestFileName is the rewritten runner manifest inside the working directory.
	ManifestFileName = "SimDriver.xctestrun"

	// ProductsDir is the relative path the manifest's __TESTROOT__ products live under.
	ProductsDir = "Debug-iphonesimulator"

	// RecordingExtension is the file extension of screen recordings.
	RecordingExtension = ".mp4"
)

// Runner manifest rewrite tokens.
const (
	// ManifestRootPlaceholder is replaced with the absolute working directory.
	ManifestRootPlaceholder = "__TESTROOT__"

	// ManifestEnvAnchor marks the environment-variables dictionary in the manifest.
	ManifestEnvAnchor = "<key>EnvironmentVariables</key>"

	// EnvScriptPath is the runner environment key naming the script file.
	EnvScriptPath = "UI_TEST_SCRIPT_PATH"

	// EnvResultPath is the runner environment key naming the result file.
	EnvResultPath = "UI_TEST_RESULT_PATH"
)

// External tool invocation.
const (
	// DefaultXcrunPath is the absolute path of xcrun on macOS.
	DefaultXcrunPath = "/usr/bin/xcrun"

	// DefaultTestSelector is the only test the runner bundle is asked to run.
	DefaultTestSelector = "SimDriverUITests/DriverTests/testScript"

	// DefaultVideoCodec is passed to simctl recordVideo.
	DefaultVideoCodec = "h264"

	// DefaultHostBundleID is the bundle identifier of the host app the runner drives.
	DefaultHostBundleID = "com.simdriver.host"
)

package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Scripts & results
	// ===================
	{
		err: ErrScriptMalformed,
		info: ErrorInfo{
			Message: "The action script could not be decoded.",
			Action:  "Check the action and target \"type\" values and required fields.",
		},
	},
	{
		err: ErrUnsupportedScriptFormat,
		info: ErrorInfo{
			Message: "The script file format is not supported.",
			Action:  "Use a .json, .yaml or .yml script file.",
		},
	},
	{
		err: ErrResultMalformed,
		info: ErrorInfo{
			Message: "The UI test runner wrote a result file that could not be decoded.",
			Action:  "Make sure the runner bundle matches this version of simdriver.",
		},
	},
	{
		err: ErrScriptFailed,
		info: ErrorInfo{
			Message: "One of the script actions failed.",
			Action:  "Review the per-action results above.",
		},
	},

	// ===================
	// Process execution
	// ===================
	{
		err: ErrProcessTimeout,
		info: ErrorInfo{
			Message: "An external command took too long and was terminated.",
			Action:  "Increase the timeout with --timeout or check the simulator is responsive.",
		},
	},
	{
		err: ErrProcessLaunchFailed,
		info: ErrorInfo{
			Message: "An external command could not be started.",
			Action:  "Verify Xcode command line tools are installed and simulator.xcrun_path is correct.",
		},
	},
	{
		err: ErrExternalRunFailed,
		info: ErrorInfo{
			Message: "The UI test runner failed before producing results.",
			Action:  "Re-run with --verbose to see the runner output.",
		},
	},

	// ===================
	// Runner setup
	// ===================
	{
		err: ErrManifestInjectionFailed,
		info: ErrorInfo{
			Message: "The runner manifest template has no EnvironmentVariables section.",
			Action:  "Rebuild the runner bundle with build-for-testing and point driver.manifest_template at its .xctestrun file.",
		},
	},
	{
		err: ErrMissingRunnerArtifact,
		info: ErrorInfo{
			Message: "A prebuilt runner artifact is missing.",
			Action:  "Check driver.manifest_template, driver.runner_app_path and driver.host_app_path.",
		},
	},
	{
		err: ErrSessionExists,
		info: ErrorInfo{
			Message: "A run with this session token is already in progress.",
			Action:  "Use a different --session token or omit it to generate one.",
		},
	},

	{
		err: ErrInvalidSessionToken,
		info: ErrorInfo{
			Message: "The session token cannot be used as a directory name.",
			Action:  "Pass a --session token without '/', '\\' or '..'.",
		},
	},

	// ===================
	// Simulator & recording
	// ===================
	{
		err: ErrSimulatorCommand,
		info: ErrorInfo{
			Message: "A simulator command failed.",
			Action:  "Run 'simdriver simulators list' to check device state.",
		},
	},
	{
		err: ErrNoBootedSimulator,
		info: ErrorInfo{
			Message: "No booted simulator was found.",
			Action:  "Boot one with 'simdriver simulators boot <udid>' or pass --device.",
		},
	},
	{
		err: ErrSimulatorNotFound,
		info: ErrorInfo{
			Message: "The requested simulator does not exist.",
			Action:  "Run 'simdriver simulators list' to see available devices.",
		},
	},
	{
		err: ErrRecordingFailed,
		info: ErrorInfo{
			Message: "Screen recording could not be started.",
			Action:  "Make sure the simulator is booted before recording.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Another simdriver process is installing onto this simulator.",
			Action:  "Wait for it to finish and retry.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigInvalidDriver,
		info: ErrorInfo{
			Message: "The driver configuration is invalid.",
			Action:  "Run 'simdriver config show' to review driver settings.",
		},
	},
	{
		err: ErrConfigInvalidSimulator,
		info: ErrorInfo{
			Message: "The simulator configuration is invalid.",
			Action:  "Run 'simdriver config show' to review simulator settings.",
		},
	},
	{
		err: ErrMissingRequiredTools,
		info: ErrorInfo{
			Message: "Xcode command line tools are missing or too old.",
			Action:  "Install Xcode, then run 'xcode-select --install'.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}

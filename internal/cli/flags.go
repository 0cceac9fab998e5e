package cli

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mrz1836/simdriver/internal/config"
	"github.com/mrz1836/simdriver/internal/errors"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitInvalidInput = 2
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output is text or json.
	Output string
	// Verbose enables debug logging.
	Verbose bool
	// Quiet limits logging to warnings.
	Quiet bool
}

// globalFlagNames are the root flags that SIMDRIVER_<NAME> can also set.
//
//nolint:gochecknoglobals // Fixed flag set
var globalFlagNames = []string{"output", "verbose", "quiet"}

// AddGlobalFlags registers the global flags as persistent root flags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "only log warnings and errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// AddDeviceFlag registers --device/-d. An empty value means the booted simulator.
func AddDeviceFlag(fs *pflag.FlagSet, device *string) {
	fs.StringVarP(device, "device", "d", "", "simulator UDID (default: the booted simulator)")
}

// BindGlobalFlags binds the root flags to v under the SIMDRIVER env prefix.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Looked up on the root so the hook works from any subcommand.
	rootFlags := cmd.Root().PersistentFlags()
	for _, name := range globalFlagNames {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	return nil
}

// applyBoundFlags copies the resolved values back: command line, then
// SIMDRIVER_* variables, then the flag default.
func applyBoundFlags(v *viper.Viper, flags *GlobalFlags) {
	flags.Output = v.GetString("output")
	flags.Verbose = v.GetBool("verbose")
	flags.Quiet = v.GetBool("quiet")
}

// ValidOutputFormats returns the accepted --output values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat reports whether format is an accepted --output value.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// invalidInputErrors are failures caused by what the user passed in
// rather than by the simulator or runner.
//
//nolint:gochecknoglobals // Fixed classification table
var invalidInputErrors = []error{
	errors.ErrInvalidOutputFormat,
	errors.ErrUnsupportedScriptFormat,
	errors.ErrScriptMalformed,
	errors.ErrInvalidSessionToken,
}

// cobraUsageMessages are fragments of cobra and pflag usage errors, which
// are returned as plain errors.
//
//nolint:gochecknoglobals // Fixed classification table
var cobraUsageMessages = []string{
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"required flag",
	"unknown command",
	"accepts at most",
	"accepts 1 arg",
}

// ExitCodeForError maps err to the process exit code: 0 for nil, 2 for bad
// input (flags, arguments, script files), 1 for everything else, including
// a script whose actions failed.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.IsExitCode2Error(err) {
		return ExitInvalidInput
	}
	for _, sentinel := range invalidInputErrors {
		if stderrors.Is(err, sentinel) {
			return ExitInvalidInput
		}
	}
	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}
	return ExitError
}

func isInvalidInputError(errMsg string) bool {
	for _, fragment := range cobraUsageMessages {
		if strings.Contains(errMsg, fragment) {
			return true
		}
	}
	return false
}

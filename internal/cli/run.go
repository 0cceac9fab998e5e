package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/simdriver/internal/config"
	"github.com/mrz1836/simdriver/internal/driver"
	"github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/script"
	"github.com/mrz1836/simdriver/internal/signal"
	"github.com/mrz1836/simdriver/internal/tui"
)

// runOptions contains the flags for the run command.
type runOptions struct {
	device      string
	record      bool
	timeout     time.Duration
	session     string
	installHost bool

	manifest  string
	runnerApp string
	hostApp   string
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run an action script against a simulator",
		Long: `Run executes an action script (.json, .yaml or .yml) through the UI
test runner on a simulator and prints the result of every action.

The booted simulator is used unless --device is given. The command exits
non-zero when any action fails.

Examples:
  simdriver run login.yaml
  simdriver run checkout.json --device 5A1B... --record
  simdriver run smoke.yaml --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.Context(), cmd, flags, opts, args[0])
		},
	}

	AddDeviceFlag(cmd.Flags(), &opts.device)
	cmd.Flags().BoolVar(&opts.record, "record", false, "record the screen while the script runs")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "runner timeout (default: driver.runner_timeout)")
	cmd.Flags().StringVar(&opts.session, "session", "", "session token scoping the run's files (default: random)")
	cmd.Flags().BoolVar(&opts.installHost, "install-host", false, "install the host app first if it is missing")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "runner manifest template (overrides driver.manifest_template)")
	cmd.Flags().StringVar(&opts.runnerApp, "runner-app", "", "prebuilt runner app (overrides driver.runner_app_path)")
	cmd.Flags().StringVar(&opts.hostApp, "host-app", "", "prebuilt host app (overrides driver.host_app_path)")

	root.AddCommand(cmd)
}

// overrides turns the artifact flags into a config overlay.
func (o *runOptions) overrides() *config.Config {
	return &config.Config{
		Driver: config.DriverConfig{
			ManifestTemplate: o.manifest,
			RunnerAppPath:    o.runnerApp,
			HostAppPath:      o.hostApp,
		},
	}
}

func runScript(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *runOptions, path string) error {
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

	s, err := loadScript(path)
	if err != nil {
		return err
	}
	if opts.record {
		s.RecordVideo = true
	}

	deps, err := loadDeps(ctx, opts.overrides())
	if err != nil {
		return err
	}

	sig := signal.NewHandler(ctx)
	defer sig.Stop()
	ctx = sig.Context()

	udid, err := deps.ctrl.ResolveDevice(ctx, opts.device)
	if err != nil {
		return err
	}

	if opts.installHost {
		installed, err := deps.ctrl.EnsureAppInstalled(ctx, udid, deps.cfg.Simulator.HostBundleID, deps.cfg.Driver.HostAppPath)
		if err != nil {
			return err
		}
		if installed && flags.Output != OutputJSON {
			out.Info("Installed host app " + deps.cfg.Simulator.HostBundleID)
		}
	}

	spinner := out.Spinner(ctx, fmt.Sprintf("Running %d actions on %s", len(s.Actions), udid))
	result, err := deps.newDriver().Execute(ctx, &driver.Request{
		Script:       s,
		DeviceID:     udid,
		SessionToken: opts.session,
		Timeout:      opts.timeout,
	})
	spinner.Stop()
	if err != nil {
		if sig.Signal() != nil {
			return errors.Wrapf(err, "interrupted by %s", sig.Signal())
		}
		return err
	}

	return reportResult(out, flags, s, result)
}

func reportResult(out tui.Output, flags *GlobalFlags, s *script.Script, result *script.ScriptResult) error {
	if flags.Output == OutputJSON {
		if err := out.JSON(result); err != nil {
			return err
		}
		if !result.Success {
			return errors.ErrScriptFailed
		}
		return nil
	}

	out.Table(tui.ReportHeaders(), tui.StyleReportRows(tui.ReportRows(s, result)))
	if result.VideoPath != "" {
		out.Info("Recording saved to " + result.VideoPath)
	}
	if !result.Success {
		out.Error(fmt.Errorf("%w: %s", errors.ErrScriptFailed, result.Error))
		return errors.ErrScriptFailed
	}
	out.Success(fmt.Sprintf("All %d actions passed", len(result.Results)))
	return nil
}

// loadScript reads and decodes a script file, picking the decoder by extension.
func loadScript(path string) (*script.Script, error) {
	var decode func([]byte) (*script.Script, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decode = script.Decode
	case ".yaml", ".yml":
		decode = script.DecodeYAML
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedScriptFormat, "%s (use .json, .yaml or .yml)", path)
	}

	data, err := os.ReadFile(path) //#nosec G304 -- path is the user's script argument
	if err != nil {
		return nil, errors.Wrap(err, "failed to read script")
	}
	s, err := decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "script %s", path)
	}
	return s, nil
}

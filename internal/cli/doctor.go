package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/simdriver/internal/config"
	"github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/tui"
)

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check the Xcode tools simdriver needs",
		Long: `Doctor checks that xcrun, xcodebuild (Xcode ` + config.MinVersionXcode + ` or newer) and simctl
are reachable through simulator.xcrun_path, and exits non-zero when one is
missing or outdated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	})
}

func runDoctor(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	xcrunPath := config.DefaultConfig().Simulator.XcrunPath
	if cfg, err := config.Load(ctx); err == nil {
		xcrunPath = cfg.Simulator.XcrunPath
	}

	result, err := config.NewToolDetector(xcrunPath).Detect(ctx)
	if err != nil {
		return err
	}

	out := tui.NewOutput(w, flags.Output)
	if flags.Output == OutputJSON {
		if err := out.JSON(result); err != nil {
			return err
		}
		if result.HasMissingRequired {
			return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, errors.ErrMissingRequiredTools)
		}
		return nil
	}

	rows := make([][]string, 0, len(result.Tools))
	for _, t := range result.Tools {
		rows = append(rows, []string{t.Name, toolStatusCell(t.Status), t.CurrentVersion, t.MinVersion})
	}
	out.Table([]string{"TOOL", "STATUS", "VERSION", "MINIMUM"}, rows)

	if missing := result.MissingRequiredTools(); len(missing) > 0 {
		out.Warning(config.FormatMissingToolsError(missing))
		return errors.ErrMissingRequiredTools
	}
	out.Success("All tools found via " + xcrunPath)
	return nil
}

func toolStatusCell(s config.ToolStatus) string {
	styles := tui.NewOutputStyles()
	switch s {
	case config.ToolStatusInstalled:
		return styles.Success.Render("✓ " + s.String())
	case config.ToolStatusOutdated:
		return styles.Warning.Render("⚠ " + s.String())
	case config.ToolStatusMissing:
		return styles.Error.Render("✗ " + s.String())
	default:
		return s.String()
	}
}

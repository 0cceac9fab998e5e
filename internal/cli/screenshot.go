package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/simdriver/internal/clock"
	"github.com/mrz1836/simdriver/internal/tui"
)

// AddScreenshotCommand adds the screenshot command to the root command.
func AddScreenshotCommand(root *cobra.Command, flags *GlobalFlags) {
	var device string

	cmd := &cobra.Command{
		Use:   "screenshot [path]",
		Short: "Save a PNG of the simulator screen",
		Long: `Save a PNG of the simulator screen. Without a path the file is written
to the current directory as screenshot-<timestamp>.png.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := clock.CaptureName(clock.RealClock{}, "screenshot-", ".png")
			if len(args) == 1 {
				path = args[0]
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}

			deps, err := loadDeps(ctx, nil)
			if err != nil {
				return err
			}
			udid, err := deps.ctrl.ResolveDevice(ctx, device)
			if err != nil {
				return err
			}
			if err := deps.ctrl.Screenshot(ctx, udid, abs); err != nil {
				return err
			}

			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
			if flags.Output == OutputJSON {
				return out.JSON(deviceStatus{UDID: udid, Status: "captured", Path: abs})
			}
			out.Success("Screenshot saved to " + abs)
			return nil
		},
	}
	AddDeviceFlag(cmd.Flags(), &device)

	root.AddCommand(cmd)
}

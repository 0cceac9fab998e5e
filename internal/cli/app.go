package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/simdriver/internal/tui"
)

// appOptions contains the flags shared by the app subcommands.
type appOptions struct {
	device string
}

// AddAppCommand adds the app command group to the root command.
func AddAppCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &appOptions{}

	cmd := &cobra.Command{
		Use:   "app",
		Short: "Install, launch and terminate apps on a simulator",
		Long: `Manage apps on a simulator. The booted simulator is used unless
--device is given.

Examples:
  simdriver app install ./build/Host.app
  simdriver app launch com.example.app
  simdriver app terminate com.example.app --device 5A1B...`,
	}
	AddDeviceFlag(cmd.PersistentFlags(), &opts.device)

	cmd.AddCommand(&cobra.Command{
		Use:   "launch <bundle-id>",
		Short: "Launch an installed app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appAction(cmd, flags, opts, args[0], "launched",
				func(ctx context.Context, deps *runtimeDeps, udid string) error {
					return deps.ctrl.LaunchApp(ctx, udid, args[0])
				})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "terminate <bundle-id>",
		Short: "Terminate a running app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appAction(cmd, flags, opts, args[0], "terminated",
				func(ctx context.Context, deps *runtimeDeps, udid string) error {
					return deps.ctrl.TerminateApp(ctx, udid, args[0])
				})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "install <app-path>",
		Short: "Install a .app bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appAction(cmd, flags, opts, args[0], "installed",
				func(ctx context.Context, deps *runtimeDeps, udid string) error {
					return deps.ctrl.InstallApp(ctx, udid, args[0])
				})
		},
	})

	root.AddCommand(cmd)
}

// appAction resolves the target device, runs fn and reports the outcome.
func appAction(cmd *cobra.Command, flags *GlobalFlags, opts *appOptions, subject, verb string,
	fn func(context.Context, *runtimeDeps, string) error,
) error {
	ctx := cmd.Context()
	deps, err := loadDeps(ctx, nil)
	if err != nil {
		return err
	}

	udid, err := deps.ctrl.ResolveDevice(ctx, opts.device)
	if err != nil {
		return err
	}
	if err := fn(ctx, deps, udid); err != nil {
		return err
	}

	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	if flags.Output == OutputJSON {
		return out.JSON(deviceStatus{UDID: udid, BundleID: subject, Status: verb})
	}
	out.Success(subject + " " + verb + " on " + udid)
	return nil
}

package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/simdriver/internal/clock"
	"github.com/mrz1836/simdriver/internal/constants"
	"github.com/mrz1836/simdriver/internal/signal"
	"github.com/mrz1836/simdriver/internal/tui"
)

// recordOptions contains the flags for the record command.
type recordOptions struct {
	device   string
	duration time.Duration
}

// AddRecordCommand adds the record command to the root command.
func AddRecordCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &recordOptions{}

	cmd := &cobra.Command{
		Use:   "record [path]",
		Short: "Record the simulator screen",
		Long: `Record the simulator screen until Ctrl+C or until --duration elapses.
Without a path the video goes to recording.dir (default
~/.simdriver/recordings).

Examples:
  simdriver record demo.mp4
  simdriver record --duration 30s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return recordScreen(cmd.Context(), cmd, flags, opts, path)
		},
	}
	AddDeviceFlag(cmd.Flags(), &opts.device)
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "stop after this long (default: until interrupted)")

	root.AddCommand(cmd)
}

func recordScreen(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *recordOptions, path string) error {
	deps, err := loadDeps(ctx, nil)
	if err != nil {
		return err
	}

	if path == "" {
		path = filepath.Join(deps.recordingDir(),
			clock.CaptureName(clock.RealClock{}, constants.SessionDirPrefix, constants.RecordingExtension))
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return err
	}

	sig := signal.NewHandler(ctx)
	defer sig.Stop()

	udid, err := deps.ctrl.ResolveDevice(sig.Context(), opts.device)
	if err != nil {
		return err
	}

	// The recorder must outlive the signal context so Stop can finalize it.
	rec, err := deps.ctrl.StartRecording(context.WithoutCancel(ctx), udid, path)
	if err != nil {
		return err
	}
	stop := func() error {
		return rec.Stop(context.WithoutCancel(ctx))
	}

	if err := rec.WaitUntilStarted(sig.Context(), deps.cfg.Recording.StartTimeout); err != nil {
		_ = stop()
		return err
	}

	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	spinner := out.Spinner(sig.Context(), "Recording "+udid+" (Ctrl+C to stop)")

	var timer <-chan time.Time
	if opts.duration > 0 {
		t := time.NewTimer(opts.duration)
		defer t.Stop()
		timer = t.C
	}
	select {
	case <-sig.Interrupted():
	case <-ctx.Done():
	case <-timer:
	}
	spinner.Stop()

	if err := stop(); err != nil {
		return err
	}

	if flags.Output == OutputJSON {
		return out.JSON(deviceStatus{UDID: udid, Status: "recorded", Path: rec.OutputPath()})
	}
	out.Success("Recording saved to " + rec.OutputPath())
	return nil
}

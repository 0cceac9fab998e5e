package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/simdriver/internal/simulator"
	"github.com/mrz1836/simdriver/internal/tui"
)

// AddSimulatorsCommand adds the simulators command group to the root command.
func AddSimulatorsCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:     "simulators",
		Aliases: []string{"sim", "sims"},
		Short:   "List, boot and shut down simulators",
	}

	cmd.AddCommand(newSimulatorsListCmd(flags))
	cmd.AddCommand(newSimulatorsBootCmd(flags))
	cmd.AddCommand(newSimulatorsShutdownCmd(flags))

	root.AddCommand(cmd)
}

func newSimulatorsListCmd(flags *GlobalFlags) *cobra.Command {
	var booted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available simulators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listSimulators(cmd.Context(), cmd, flags, booted)
		},
	}
	cmd.Flags().BoolVar(&booted, "booted", false, "only show booted simulators")
	return cmd
}

func listSimulators(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, bootedOnly bool) error {
	deps, err := loadDeps(ctx, nil)
	if err != nil {
		return err
	}

	sims, err := deps.ctrl.ListSimulators(ctx)
	if err != nil {
		return err
	}
	if bootedOnly {
		filtered := sims[:0]
		for _, s := range sims {
			if s.Booted() {
				filtered = append(filtered, s)
			}
		}
		sims = filtered
	}

	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	if flags.Output == OutputJSON {
		if sims == nil {
			sims = []simulator.Simulator{}
		}
		return out.JSON(sims)
	}

	if len(sims) == 0 {
		out.Info("No simulators found")
		return nil
	}
	out.Table([]string{"UDID", "NAME", "STATE", "RUNTIME"}, simulatorRows(sims))
	return nil
}

func simulatorRows(sims []simulator.Simulator) [][]string {
	rows := make([][]string, 0, len(sims))
	for _, s := range sims {
		rows = append(rows, []string{s.UDID, s.Name, string(s.State), s.Runtime})
	}
	return rows
}

func newSimulatorsBootCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "boot <udid>",
		Short: "Boot a simulator",
		Long: `Boot a simulator by UDID. Booting an already booted simulator succeeds.

Example:
  simdriver simulators boot 5A1B2C3D-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulatorAction(cmd, flags, args[0], "booted", func(ctx context.Context, c *simulator.Controller, udid string) error {
				return c.Boot(ctx, udid)
			})
		},
	}
}

func newSimulatorsShutdownCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown <udid>",
		Short: "Shut a simulator down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulatorAction(cmd, flags, args[0], "shut down", func(ctx context.Context, c *simulator.Controller, udid string) error {
				return c.Shutdown(ctx, udid)
			})
		},
	}
}

// deviceStatus is the JSON form of a completed device operation.
type deviceStatus struct {
	UDID     string `json:"udid"`
	BundleID string `json:"bundle_id,omitempty"`
	Status   string `json:"status"`
	Path     string `json:"path,omitempty"`
}

// simulatorAction runs fn against a device and reports the outcome.
func simulatorAction(cmd *cobra.Command, flags *GlobalFlags, udid, verb string,
	fn func(context.Context, *simulator.Controller, string) error,
) error {
	ctx := cmd.Context()
	deps, err := loadDeps(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(ctx, deps.ctrl, udid); err != nil {
		return err
	}

	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	if flags.Output == OutputJSON {
		return out.JSON(deviceStatus{UDID: udid, Status: strings.ReplaceAll(verb, " ", "_")})
	}
	out.Success("Simulator " + udid + " " + verb)
	return nil
}

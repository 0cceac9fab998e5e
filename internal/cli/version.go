package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/simdriver/internal/tui"
)

// versionInfo is the JSON form of the version command.
type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// AddVersionCommand adds the version command to the root command.
func AddVersionCommand(root *cobra.Command, flags *GlobalFlags, info BuildInfo) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := info.withDefaults()
			v := versionInfo{
				Version:   info.Version,
				Commit:    info.Commit,
				Date:      info.Date,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
			if flags.Output == OutputJSON {
				return out.JSON(v)
			}
			out.Info("simdriver " + formatVersion(info) + " " + v.GoVersion + " " + v.Platform)
			return nil
		},
	})
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/simdriver/internal/config"
	"github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/tui"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect simdriver configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective simdriver configuration with source annotations.

Each value is tagged with where it came from:
  - default: Built-in default value
  - global: From ~/.simdriver/config.yaml
  - project: From .simdriver/config.yaml
  - env: From a SIMDRIVER_* environment variable

Examples:
  simdriver config show
  simdriver config show --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	})

	root.AddCommand(cmd)
}

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault ConfigSource = "default"
	// SourceGlobal indicates the value came from global config.
	SourceGlobal ConfigSource = "global"
	// SourceProject indicates the value came from project config.
	SourceProject ConfigSource = "project"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
)

// ConfigEntry is one effective configuration value and its source.
type ConfigEntry struct {
	Key    string       `json:"key"`
	Value  string       `json:"value"`
	Source ConfigSource `json:"source"`
}

// configFiles is the JSON form of the config file locations.
type configFiles struct {
	Global  string `json:"global,omitempty"`
	Project string `json:"project"`
}

// annotatedConfig is the JSON document printed by config show.
type annotatedConfig struct {
	Values []ConfigEntry `json:"values"`
	Files  configFiles   `json:"files"`
}

func runConfigShow(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	entries, err := annotateConfig(cfg, fileKeys(globalConfigPath()), fileKeys(config.ProjectConfigPath()))
	if err != nil {
		return err
	}

	if flags.Output == OutputJSON {
		return tui.NewOutput(w, OutputJSON).JSON(annotatedConfig{
			Values: entries,
			Files:  configFiles{Global: globalConfigPath(), Project: config.ProjectConfigPath()},
		})
	}
	writeAnnotatedConfig(w, entries)
	return nil
}

func globalConfigPath() string {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return ""
	}
	return path
}

// annotateConfig flattens cfg into dotted keys in declaration order and
// tags each with the highest-precedence source that sets it.
func annotateConfig(cfg *config.Config, global, project map[string]bool) ([]ConfigEntry, error) {
	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to encode configuration")
	}

	var entries []ConfigEntry
	walkScalars(&root, "", func(key, value string) {
		entries = append(entries, ConfigEntry{
			Key:    key,
			Value:  value,
			Source: sourceOf(key, global, project),
		})
	})
	return entries, nil
}

// walkScalars calls fn for every scalar leaf of a mapping node.
func walkScalars(n *yaml.Node, prefix string, fn func(key, value string)) {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		walkScalars(n.Content[0], prefix, fn)
		return
	}
	if n.Kind != yaml.MappingNode {
		fn(prefix, n.Value)
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		walkScalars(n.Content[i+1], key, fn)
	}
}

func sourceOf(key string, global, project map[string]bool) ConfigSource {
	envKey := config.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if _, ok := os.LookupEnv(envKey); ok {
		return SourceEnv
	}
	if project[key] {
		return SourceProject
	}
	if global[key] {
		return SourceGlobal
	}
	return SourceDefault
}

// fileKeys returns the dotted keys a YAML config file sets. A missing or
// unreadable file sets nothing.
func fileKeys(path string) map[string]bool {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) //#nosec G304 -- config file path
	if err != nil {
		return nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil
	}
	keys := make(map[string]bool)
	walkScalars(&root, "", func(key, _ string) {
		if key != "" {
			keys[key] = true
		}
	})
	return keys
}

// writeAnnotatedConfig prints the entries grouped by section with a source
// comment after each value.
func writeAnnotatedConfig(w io.Writer, entries []ConfigEntry) {
	header := lipgloss.NewStyle().Bold(true).Foreground(tui.ColorPrimary)
	key := lipgloss.NewStyle().Foreground(tui.ColorPrimary)
	sources := map[ConfigSource]lipgloss.Style{
		SourceEnv:     lipgloss.NewStyle().Foreground(tui.ColorError),
		SourceProject: lipgloss.NewStyle().Foreground(tui.ColorWarning),
		SourceGlobal:  lipgloss.NewStyle().Foreground(tui.ColorSuccess),
		SourceDefault: lipgloss.NewStyle().Foreground(tui.ColorMuted),
	}

	_, _ = fmt.Fprintln(w, header.Render("Effective simdriver configuration"))
	_, _ = fmt.Fprintln(w, tui.StyleDim.Render("Sources: env > project > global > default"))

	section := ""
	for _, e := range entries {
		sec, name, _ := strings.Cut(e.Key, ".")
		if sec != section {
			section = sec
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, tui.StyleBold.Render(sec+":"))
		}
		value := e.Value
		if value == "" {
			value = "(not set)"
		}
		_, _ = fmt.Fprintf(w, "  %s: %s  %s\n", key.Render(name), value, sources[e.Source].Render("# "+string(e.Source)))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, tui.StyleDim.Render("Configuration files:"))
	for _, f := range []struct{ label, path string }{
		{"Global", globalConfigPath()},
		{"Project", config.ProjectConfigPath()},
	} {
		if f.path == "" {
			continue
		}
		state := ""
		if _, err := os.Stat(f.path); err != nil {
			state = " (not found)"
		}
		_, _ = fmt.Fprintf(w, "  %s: %s%s\n", f.label, f.path, state)
	}
}

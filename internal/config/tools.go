// This file implements detection of the Xcode command-line tools simdriver shells out to.
package config

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/simdriver/internal/constants"
)

// Tool names and minimum versions.
const (
	ToolXcrun      = "xcrun"
	ToolXcodebuild = "xcodebuild"
	ToolSimctl     = "simctl"

	// MinVersionXcode is the oldest Xcode whose simctl supports recordVideo --force.
	MinVersionXcode = "14.0"

	toolDetectionTimeout = 10 * time.Second
)

//nolint:gochecknoglobals // compiled once
var (
	xcrunVersionRe  = regexp.MustCompile(`xcrun version (\d+(?:\.\d+)*)`)
	xcodeVersionRe  = regexp.MustCompile(`Xcode (\d+\.\d+(?:\.\d+)?)`)
	simctlVersionRe = regexp.MustCompile(`PROJECT:CoreSimulator-(\d+(?:\.\d+)*)`)
)

// ToolStatus represents the installation status of an external tool.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type ToolStatus int

const (
	// ToolStatusMissing indicates the tool is not installed.
	ToolStatusMissing ToolStatus = iota

	// ToolStatusInstalled indicates the tool is installed and meets version requirements.
	ToolStatusInstalled

	// ToolStatusOutdated indicates the tool is installed but below the minimum version.
	ToolStatusOutdated
)

// maxVersionSegments is the number of segments in a semantic version (major.minor.patch).
const maxVersionSegments = 3

// String returns a human-readable representation of the tool status.
func (s ToolStatus) String() string {
	switch s {
	case ToolStatusInstalled:
		return "installed"
	case ToolStatusMissing:
		return "missing"
	case ToolStatusOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for human-readable JSON output.
func (s ToolStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for parsing JSON status strings.
func (s *ToolStatus) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "installed":
		*s = ToolStatusInstalled
	case "outdated":
		*s = ToolStatusOutdated
	default:
		*s = ToolStatusMissing
	}
	return nil
}

// Tool represents an external tool simdriver depends on.
type Tool struct {
	Name           string     `json:"name"`
	Required       bool       `json:"required"`
	MinVersion     string     `json:"min_version"`
	CurrentVersion string     `json:"current_version"`
	Status         ToolStatus `json:"status"`
	InstallHint    string     `json:"install_hint"`
}

// ToolDetectionResult holds the results of detecting all tools.
type ToolDetectionResult struct {
	Tools []Tool `json:"tools"`

	// HasMissingRequired indicates if any required tools are missing or outdated.
	HasMissingRequired bool `json:"has_missing_required"`
}

// MissingRequiredTools returns a list of required tools that are missing or outdated.
func (r *ToolDetectionResult) MissingRequiredTools() []Tool {
	var missing []Tool
	for _, tool := range r.Tools {
		if tool.Required && tool.Status != ToolStatusInstalled {
			missing = append(missing, tool)
		}
	}
	return missing
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// LookPath searches for an executable named file in the PATH.
	LookPath(file string) (string, error)

	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// DefaultCommandExecutor implements CommandExecutor using os/exec.
type DefaultCommandExecutor struct{}

// LookPath searches for an executable in the PATH.
func (e *DefaultCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and returns its combined output.
func (e *DefaultCommandExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput() //#nosec G204 -- fixed tool invocations
	return string(output), err
}

// ToolDetector checks the Xcode tools reachable through the configured xcrun.
type ToolDetector struct {
	executor  CommandExecutor
	xcrunPath string
}

// NewToolDetector creates a detector that uses xcrunPath.
func NewToolDetector(xcrunPath string) *ToolDetector {
	return NewToolDetectorWithExecutor(xcrunPath, &DefaultCommandExecutor{})
}

// NewToolDetectorWithExecutor creates a detector with a custom executor.
func NewToolDetectorWithExecutor(xcrunPath string, executor CommandExecutor) *ToolDetector {
	if xcrunPath == "" {
		xcrunPath = constants.DefaultXcrunPath
	}
	return &ToolDetector{executor: executor, xcrunPath: xcrunPath}
}

type toolConfig struct {
	name        string
	args        []string
	minVersion  string
	installHint string
	re          *regexp.Regexp
}

func (d *ToolDetector) toolConfigs() []toolConfig {
	return []toolConfig{
		{
			name:        ToolXcrun,
			args:        []string{"--version"},
			installHint: "Install the Xcode command line tools: xcode-select --install",
			re:          xcrunVersionRe,
		},
		{
			name:        ToolXcodebuild,
			args:        []string{"xcodebuild", "-version"},
			minVersion:  MinVersionXcode,
			installHint: "Install Xcode " + MinVersionXcode + "+ and run: sudo xcode-select -s /Applications/Xcode.app",
			re:          xcodeVersionRe,
		},
		{
			name:        ToolSimctl,
			args:        []string{"simctl", "help"},
			installHint: "Install an iOS simulator runtime from Xcode > Settings > Platforms",
			re:          simctlVersionRe,
		},
	}
}

// Detect checks every tool concurrently and returns their status.
// All tools are required.
func (d *ToolDetector) Detect(ctx context.Context) (*ToolDetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detectCtx, cancel := context.WithTimeout(ctx, toolDetectionTimeout)
	defer cancel()

	configs := d.toolConfigs()
	result := &ToolDetectionResult{Tools: make([]Tool, 0, len(configs))}
	var mu sync.Mutex

	_, lookErr := d.executor.LookPath(d.xcrunPath)

	g, gCtx := errgroup.WithContext(detectCtx)
	for _, cfg := range configs {
		g.Go(func() error {
			tool := d.detectTool(gCtx, cfg, lookErr == nil)
			mu.Lock()
			result.Tools = append(result.Tools, tool)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to detect tools: %w", err)
	}

	order := map[string]int{}
	for i, cfg := range configs {
		order[cfg.name] = i
	}
	sort.Slice(result.Tools, func(i, j int) bool {
		return order[result.Tools[i].Name] < order[result.Tools[j].Name]
	})

	result.HasMissingRequired = len(result.MissingRequiredTools()) > 0
	return result, nil
}

func (d *ToolDetector) detectTool(ctx context.Context, cfg toolConfig, xcrunFound bool) Tool {
	tool := Tool{
		Name:        cfg.name,
		Required:    true,
		MinVersion:  cfg.minVersion,
		InstallHint: cfg.installHint,
		Status:      ToolStatusMissing,
	}
	if !xcrunFound {
		return tool
	}

	output, err := d.executor.Run(ctx, d.xcrunPath, cfg.args...)
	if err != nil {
		// xcrun exists but cannot find the tool
		if cfg.name != ToolXcrun {
			return tool
		}
		tool.Status = ToolStatusInstalled
		tool.CurrentVersion = "unknown"
		return tool
	}

	tool.Status = ToolStatusInstalled
	tool.CurrentVersion = "unknown"
	if matches := cfg.re.FindStringSubmatch(output); len(matches) >= 2 {
		tool.CurrentVersion = matches[1]
		if cfg.minVersion != "" && CompareVersions(tool.CurrentVersion, cfg.minVersion) < 0 {
			tool.Status = ToolStatusOutdated
		}
	}
	return tool
}

// CompareVersions compares two semantic versions.
// Returns -1 if current < required, 0 if equal, 1 if current > required.
func CompareVersions(current, required string) int {
	currentParts := parseVersionParts(strings.TrimPrefix(current, "v"))
	requiredParts := parseVersionParts(strings.TrimPrefix(required, "v"))

	for i := 0; i < maxVersionSegments; i++ {
		if currentParts[i] < requiredParts[i] {
			return -1
		}
		if currentParts[i] > requiredParts[i] {
			return 1
		}
	}
	return 0
}

// parseVersionParts parses a version string into [major, minor, patch].
func parseVersionParts(version string) [maxVersionSegments]int {
	var parts [maxVersionSegments]int
	segments := strings.Split(version, ".")

	for i := 0; i < len(segments) && i < maxVersionSegments; i++ {
		numStr := segments[i]
		for j, c := range numStr {
			if c < '0' || c > '9' {
				numStr = numStr[:j]
				break
			}
		}
		if numStr != "" {
			parts[i], _ = strconv.Atoi(numStr)
		}
	}
	return parts
}

// FormatMissingToolsError creates a formatted error message for missing tools.
func FormatMissingToolsError(missing []Tool) string {
	if len(missing) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing required tools:\n\n")
	for _, tool := range missing {
		status := "missing"
		if tool.Status == ToolStatusOutdated {
			status = fmt.Sprintf("outdated (have %s, need %s)", tool.CurrentVersion, tool.MinVersion)
		}
		fmt.Fprintf(&sb, "  • %s: %s\n", tool.Name, status)
		fmt.Fprintf(&sb, "    Install: %s\n\n", tool.InstallHint)
	}
	return sb.String()
}

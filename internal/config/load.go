package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/simdriver/internal/constants"
	"github.com/mrz1836/simdriver/internal/errors"
)

// EnvPrefix is the prefix of environment variables read by Load.
// SIMDRIVER_DRIVER_RUNNER_TIMEOUT maps to driver.runner_timeout.
const EnvPrefix = "SIMDRIVER"

// newViperInstance creates a new Viper instance with the environment prefix,
// key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (SIMDRIVER_* prefix)
//  2. Project config (.simdriver/config.yaml)
//  3. Global config (~/.simdriver/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead.
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("simulator.xcrun_path", cfg.Simulator.XcrunPath).
		Str("driver.manifest_template", cfg.Driver.ManifestTemplate).
		Dur("driver.runner_timeout", cfg.Driver.RunnerTimeout).
		Dur("driver.result_timeout", cfg.Driver.ResultTimeout).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// loadGlobalConfig attempts to load the global config file (~/.simdriver/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
func getGlobalConfigPathIfExists() (string, bool) {
	globalDir, err := GlobalConfigDir()
	if err != nil {
		return "", false
	}

	globalConfigPath := filepath.Join(globalDir, constants.GlobalConfigName)
	if _, err := os.Stat(globalConfigPath); err != nil {
		return "", false
	}

	return globalConfigPath, true
}

// loadProjectConfig attempts to load the project config file (.simdriver/config.yaml).
// Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
// projectConfigPath takes precedence over globalConfigPath; either may be
// empty to skip that level. Environment variables still apply.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly, and every key must be
// registered here for SIMDRIVER_* variables to reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("simulator.xcrun_path", d.Simulator.XcrunPath)
	v.SetDefault("simulator.command_timeout", d.Simulator.CommandTimeout.String())
	v.SetDefault("simulator.host_bundle_id", d.Simulator.HostBundleID)
	v.SetDefault("simulator.lock_timeout", d.Simulator.LockTimeout.String())

	v.SetDefault("driver.manifest_template", "")
	v.SetDefault("driver.runner_app_path", "")
	v.SetDefault("driver.host_app_path", "")
	v.SetDefault("driver.work_dir", "")
	v.SetDefault("driver.test_selector", d.Driver.TestSelector)
	v.SetDefault("driver.runner_timeout", d.Driver.RunnerTimeout.String())
	v.SetDefault("driver.result_timeout", d.Driver.ResultTimeout.String())
	v.SetDefault("driver.poll_interval", d.Driver.PollInterval.String())

	v.SetDefault("recording.dir", "")
	v.SetDefault("recording.codec", d.Recording.Codec)
	v.SetDefault("recording.settle_delay", d.Recording.SettleDelay.String())
	v.SetDefault("recording.start_timeout", d.Recording.StartTimeout.String())

	v.SetDefault("process.default_timeout", d.Process.DefaultTimeout.String())
	v.SetDefault("process.graceful_wait", d.Process.GracefulWait.String())
	v.SetDefault("process.interrupt_wait", d.Process.InterruptWait.String())
	v.SetDefault("process.drain_grace", d.Process.DrainGrace.String())
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	applySimulatorOverrides(&cfg.Simulator, &overrides.Simulator)
	applyDriverOverrides(&cfg.Driver, &overrides.Driver)

	if overrides.Recording.Dir != "" {
		cfg.Recording.Dir = overrides.Recording.Dir
	}
	if overrides.Recording.Codec != "" {
		cfg.Recording.Codec = overrides.Recording.Codec
	}
	if overrides.Recording.SettleDelay != 0 {
		cfg.Recording.SettleDelay = overrides.Recording.SettleDelay
	}
	if overrides.Recording.StartTimeout != 0 {
		cfg.Recording.StartTimeout = overrides.Recording.StartTimeout
	}

	if overrides.Process.DefaultTimeout != 0 {
		cfg.Process.DefaultTimeout = overrides.Process.DefaultTimeout
	}
}

func applySimulatorOverrides(cfg, overrides *SimulatorConfig) {
	if overrides.XcrunPath != "" {
		cfg.XcrunPath = overrides.XcrunPath
	}
	if overrides.CommandTimeout != 0 {
		cfg.CommandTimeout = overrides.CommandTimeout
	}
	if overrides.HostBundleID != "" {
		cfg.HostBundleID = overrides.HostBundleID
	}
}

func applyDriverOverrides(cfg, overrides *DriverConfig) {
	if overrides.ManifestTemplate != "" {
		cfg.ManifestTemplate = overrides.ManifestTemplate
	}
	if overrides.RunnerAppPath != "" {
		cfg.RunnerAppPath = overrides.RunnerAppPath
	}
	if overrides.HostAppPath != "" {
		cfg.HostAppPath = overrides.HostAppPath
	}
	if overrides.WorkDir != "" {
		cfg.WorkDir = overrides.WorkDir
	}
	if overrides.TestSelector != "" {
		cfg.TestSelector = overrides.TestSelector
	}
	if overrides.RunnerTimeout != 0 {
		cfg.RunnerTimeout = overrides.RunnerTimeout
	}
	if overrides.ResultTimeout != 0 {
		cfg.ResultTimeout = overrides.ResultTimeout
	}
}

// viperDecoderOption configures mapstructure to decode durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/simdriver/internal/constants"
	"github.com/mrz1836/simdriver/internal/errors"
)

// HomeDir returns the simdriver home directory: $SIMDRIVER_HOME when set,
// ~/.simdriver otherwise. Logs, locks and recordings live under it.
func HomeDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.SimdriverHome), nil
}

// GlobalConfigDir returns the directory holding the global config file.
// It is the simdriver home directory.
func GlobalConfigDir() (string, error) {
	return HomeDir()
}

// ProjectConfigDir returns the relative path to the project configuration directory.
func ProjectConfigDir() string {
	return constants.ProjectConfigDir
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
// This is always .simdriver/config.yaml relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ProjectConfigName)
}

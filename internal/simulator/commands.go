package simulator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/flock"
)

// ListSimulators returns every available simulator.
func (c *Controller) ListSimulators(ctx context.Context) ([]Simulator, error) {
	res, err := c.simctl(ctx, "list", "devices", "-j")
	if err != nil {
		return nil, err
	}
	return parseDevices([]byte(res.Stdout))
}

// BootedSimulator returns the first booted simulator, or ErrNoBootedSimulator.
func (c *Controller) BootedSimulator(ctx context.Context) (*Simulator, error) {
	sims, err := c.ListSimulators(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sims {
		if sims[i].Booted() {
			return &sims[i], nil
		}
	}
	return nil, simerrors.ErrNoBootedSimulator
}

// Find returns the available simulator with the given UDID.
func (c *Controller) Find(ctx context.Context, udid string) (*Simulator, error) {
	sims, err := c.ListSimulators(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sims {
		if sims[i].UDID == udid {
			return &sims[i], nil
		}
	}
	return nil, simerrors.Wrapf(simerrors.ErrSimulatorNotFound, "udid %s", udid)
}

// ResolveDevice returns udid when set, otherwise the booted simulator's UDID.
func (c *Controller) ResolveDevice(ctx context.Context, udid string) (string, error) {
	if udid != "" {
		return udid, nil
	}
	sim, err := c.BootedSimulator(ctx)
	if err != nil {
		return "", err
	}
	c.logger.Debug().Str("udid", sim.UDID).Str("name", sim.Name).Msg("using booted simulator")
	return sim.UDID, nil
}

// Boot boots a simulator. Booting an already booted device succeeds.
func (c *Controller) Boot(ctx context.Context, udid string) error {
	res, err := c.exec(ctx, "boot", udid)
	if err != nil {
		return err
	}
	if res.Success() {
		return nil
	}
	if strings.Contains(res.Stderr, "current state: Booted") {
		c.logger.Debug().Str("udid", udid).Msg("simulator already booted")
		return nil
	}
	return simerrors.Wrapf(simerrors.ErrSimulatorCommand, "simctl boot (exit %d): %s",
		res.ExitCode, strings.TrimSpace(res.Stderr))
}

// Shutdown shuts a simulator down.
func (c *Controller) Shutdown(ctx context.Context, udid string) error {
	_, err := c.simctl(ctx, "shutdown", udid)
	return err
}

// LaunchApp launches bundleID on the simulator.
func (c *Controller) LaunchApp(ctx context.Context, udid, bundleID string) error {
	_, err := c.simctl(ctx, "launch", udid, bundleID)
	return err
}

// TerminateApp terminates bundleID on the simulator.
func (c *Controller) TerminateApp(ctx context.Context, udid, bundleID string) error {
	_, err := c.simctl(ctx, "terminate", udid, bundleID)
	return err
}

// Screenshot writes a PNG of the simulator screen to outputPath.
func (c *Controller) Screenshot(ctx context.Context, udid, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return simerrors.Wrap(err, "failed to create screenshot directory")
	}
	_, err := c.simctl(ctx, "io", udid, "screenshot", outputPath)
	return err
}

// IsAppInstalled reports whether bundleID has an app container on the device.
func (c *Controller) IsAppInstalled(ctx context.Context, udid, bundleID string) (bool, error) {
	res, err := c.exec(ctx, "get_app_container", udid, bundleID)
	if err != nil {
		return false, err
	}
	return res.Success(), nil
}

// InstallApp installs the .app bundle at appPath.
func (c *Controller) InstallApp(ctx context.Context, udid, appPath string) error {
	if _, err := os.Stat(appPath); err != nil {
		return simerrors.Wrapf(simerrors.ErrMissingRunnerArtifact, "app bundle %s", appPath)
	}
	_, err := c.simctl(ctx, "install", udid, appPath)
	return err
}

// EnsureAppInstalled installs appPath unless bundleID is already present.
// The check and the install run under a per-device lock so concurrent
// callers targeting one device do not race. It reports whether an install
// happened.
func (c *Controller) EnsureAppInstalled(ctx context.Context, udid, bundleID, appPath string) (bool, error) {
	if c.lockDir != "" {
		lock, err := flock.Acquire(ctx, filepath.Join(c.lockDir, udid+".lock"), c.lockTimeout)
		if err != nil {
			return false, err
		}
		defer func() {
			if relErr := lock.Release(); relErr != nil {
				c.logger.Warn().Err(relErr).Str("udid", udid).Msg("failed to release install lock")
			}
		}()
	}

	installed, err := c.IsAppInstalled(ctx, udid, bundleID)
	if err != nil {
		return false, err
	}
	if installed {
		return false, nil
	}

	c.logger.Info().Str("udid", udid).Str("bundle_id", bundleID).Msg("installing app")
	if err := c.InstallApp(ctx, udid, appPath); err != nil {
		return false, err
	}
	return true, nil
}

package driver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

// materialize copies each prebuilt .app bundle into the session's products
// directory, where the rewritten manifest expects to find it.
func materialize(productsDir string, bundles ...string) error {
	for _, src := range bundles {
		info, err := os.Stat(src)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return simerrors.Wrapf(simerrors.ErrMissingRunnerArtifact, "%s", src)
			}
			return fmt.Errorf("failed to stat %s: %w", src, err)
		}
		if !info.IsDir() {
			return simerrors.Wrapf(simerrors.ErrMissingRunnerArtifact, "%s is not an app bundle", src)
		}

		dst := filepath.Join(productsDir, filepath.Base(src))
		if err := copyTree(src, dst); err != nil {
			return fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
		}
	}
	return nil
}

// copyTree copies directory src to dst, preserving file modes and symlinks.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.IsDir():
			return os.MkdirAll(target, dirPerm)
		default:
			info, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src) //#nosec G304 -- copying configured runner artifacts
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode) //#nosec G304 -- destination is inside the session directory
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

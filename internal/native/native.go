// Package native builds the Linux replacement for the vendor's
// platform-specific native addon.
package native

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"claudebuild/internal/paths"
	"claudebuild/internal/run"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Build copies the addon sources into the work directory and runs the
// npm build there, returning the path to the produced .node binding.
// Exactly one binding is expected; anything else means the addon's build
// script changed underneath us.
func Build(ctx context.Context, r run.Runner, logger Logger, moduleDir, workDir string) (string, error) {
	if ok, _ := paths.DirExists(moduleDir); !ok {
		return "", fmt.Errorf("native module sources not found at %s", moduleDir)
	}

	buildDir := filepath.Join(workDir, "native-module")
	if err := copyTree(moduleDir, buildDir); err != nil {
		return "", fmt.Errorf("stage native module: %w", err)
	}

	logger.Printf("building native module in %s", buildDir)

	res, err := r.Run(ctx, "npm", []string{"install"}, run.Options{Dir: buildDir})
	if err != nil {
		return "", run.WrapError("npm install", err, res)
	}
	res, err = r.Run(ctx, "npm", []string{"run", "build"}, run.Options{Dir: buildDir})
	if err != nil {
		return "", run.WrapError("npm run build", err, res)
	}

	matches, err := filepath.Glob(filepath.Join(buildDir, "*.node"))
	if err != nil {
		return "", fmt.Errorf("glob built module: %w", err)
	}
	if len(matches) != 1 {
		return "", fmt.Errorf("expected 1 .node binding after build, found %d", len(matches))
	}
	return matches[0], nil
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode().Perm())
	})
}

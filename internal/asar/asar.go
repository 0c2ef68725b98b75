// Package asar drives the `asar` archiver (via npx) for the vendor's
// packed application archive.
package asar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"claudebuild/internal/run"
)

// Extract unpacks an app.asar archive into destDir.
func Extract(ctx context.Context, r run.Runner, archive, destDir string) error {
	res, err := r.Run(ctx, "npx", []string{"asar", "extract", archive, destDir}, run.Options{})
	if err != nil {
		return run.WrapError("asar extract", err, res)
	}
	return nil
}

// Pack repacks an extracted app directory into an app.asar archive.
func Pack(ctx context.Context, r run.Runner, appDir, archive string) error {
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		return fmt.Errorf("ensure archive dir: %w", err)
	}
	res, err := r.Run(ctx, "npx", []string{"asar", "pack", appDir, archive}, run.Options{})
	if err != nil {
		return run.WrapError("asar pack", err, res)
	}
	return nil
}

// PackageJSON holds the manifest fields the pipeline cares about.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	ProductName     string            `json:"productName"`
	DevDependencies map[string]string `json:"devDependencies"`
	Engines         map[string]string `json:"engines"`
}

// ReadPackageJSON extracts an app.asar into a scratch directory and
// parses the bundled package.json manifest.
func ReadPackageJSON(ctx context.Context, r run.Runner, archive string) (*PackageJSON, error) {
	tmpDir, err := os.MkdirTemp("", "claudebuild-asar-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	appDir := filepath.Join(tmpDir, "app")
	if err := Extract(ctx, r, archive, appDir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(appDir, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("read package.json: %w", err)
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parse package.json: %w", err)
	}
	return &pkg, nil
}

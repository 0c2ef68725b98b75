package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"claudebuild/internal/asar"
	"claudebuild/internal/builderr"
	"claudebuild/internal/metadata"
	"claudebuild/internal/paths"
	"claudebuild/internal/run"
)

// windowsSource unwraps the Squirrel-style Windows installer: a
// self-extracting exe wrapping exactly one nupkg update package, which
// in turn contains the Electron resources tree.
type windowsSource struct {
	base
}

func newWindowsSource(deps Deps) *windowsSource {
	return &windowsSource{
		base: base{
			deps:      deps,
			name:      "windows",
			cacheKey:  "windows",
			url:       deps.WindowsURL,
			installer: "Claude-Setup-x64.exe",
			metaName:  "metadata.json",
		},
	}
}

func (s *windowsSource) RequiredCommands() []string {
	return []string{"7z", "npx", "npm", "convert", "wrestool", "icotool"}
}

// Extract unpacks exe -> nupkg -> lib/net45/resources. Zero or multiple
// candidates at any step is a hard failure; ambiguity is never resolved
// by guessing.
func (s *windowsSource) Extract(ctx context.Context, workDir string) (string, error) {
	s.deps.logger().Printf("extracting windows installer")

	installer := s.InstallerPath()
	if !s.HasInstaller() {
		return "", &builderr.ExtractionError{Path: installer, Message: "installer not downloaded"}
	}

	extractDir := filepath.Join(workDir, "extract")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", fmt.Errorf("create extract dir: %w", err)
	}

	res, err := s.deps.runner().Run(ctx, "7z", []string{"x", "-y", installer, "-o" + extractDir}, run.Options{})
	if err != nil {
		return "", &builderr.ExtractionError{Path: installer, Err: run.WrapError("7z", err, res)}
	}

	nupkg, err := s.locateNupkg(extractDir)
	if err != nil {
		return "", err
	}

	nupkgDir := filepath.Join(workDir, "nupkg")
	res, err = s.deps.runner().Run(ctx, "7z", []string{"x", "-y", nupkg, "-o" + nupkgDir}, run.Options{})
	if err != nil {
		return "", &builderr.ExtractionError{Path: nupkg, Err: run.WrapError("7z", err, res)}
	}

	resourcesDir := filepath.Join(nupkgDir, "lib", "net45", "resources")
	if ok, _ := paths.DirExists(resourcesDir); !ok {
		return "", &builderr.ExtractionError{Path: resourcesDir, Message: "resources directory not found"}
	}
	return resourcesDir, nil
}

func (s *windowsSource) locateNupkg(extractDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(extractDir, "*.nupkg"))
	if err != nil {
		return "", fmt.Errorf("glob nupkg: %w", err)
	}
	switch len(matches) {
	case 0:
		return "", &builderr.ExtractionError{Path: extractDir, Message: "no .nupkg found in extracted exe"}
	case 1:
		return matches[0], nil
	default:
		return "", &builderr.ExtractionError{Path: extractDir, Message: fmt.Sprintf("expected 1 .nupkg, found %d", len(matches))}
	}
}

var nupkgNamePattern = regexp.MustCompile(`^AnthropicClaude-(.+)-full\.nupkg$`)

// parseNupkgVersion extracts the release version from the update-package
// filename. A filename outside the expected pattern is an extraction
// error, never a guessed value.
func parseNupkgVersion(name string) (string, error) {
	m := nupkgNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", &builderr.ExtractionError{Path: name, Message: "unexpected nupkg filename"}
	}
	return m[1], nil
}

// ExtractMetadata reads the release version from the nupkg filename and
// the runtime requirements from the package manifest inside app.asar.
// It expects the directory layout produced by Extract.
func (s *windowsSource) ExtractMetadata(ctx context.Context, resourcesDir string) (*metadata.Version, error) {
	// resourcesDir is <work>/nupkg/lib/net45/resources; the nupkg itself
	// sits next to the nupkg tree under <work>/extract.
	nupkgRoot := filepath.Dir(filepath.Dir(filepath.Dir(resourcesDir)))
	extractDir := filepath.Join(filepath.Dir(nupkgRoot), "extract")

	nupkg, err := s.locateNupkg(extractDir)
	if err != nil {
		return nil, err
	}
	version, err := parseNupkgVersion(filepath.Base(nupkg))
	if err != nil {
		return nil, err
	}

	pkg, err := asar.ReadPackageJSON(ctx, s.deps.runner(), filepath.Join(resourcesDir, "app.asar"))
	if err != nil {
		return nil, err
	}

	electron := pkg.DevDependencies["electron"]
	if electron == "" {
		return nil, &builderr.MetadataError{Field: "electron_version", Message: "not found in package.json"}
	}

	appName := pkg.ProductName
	if appName == "" {
		appName = "Claude"
	}

	return &metadata.Version{
		Version:         version,
		ElectronVersion: electron,
		NodeRequirement: pkg.Engines["node"],
		AppName:         appName,
		Source:          s.name,
	}, nil
}

// ProcessIcons pulls the icon resource group out of the bundled exe and
// fans it out into the hicolor size directories.
func (s *windowsSource) ProcessIcons(ctx context.Context, resourcesDir, outputDir string) error {
	s.deps.logger().Printf("processing icons from windows exe")

	exePath := filepath.Join(filepath.Dir(resourcesDir), "claude.exe")
	if ok, _ := paths.FileExists(exePath); !ok {
		return fmt.Errorf("claude.exe not found at %s", exePath)
	}

	iconWork, err := os.MkdirTemp("", "claudebuild-icons-*")
	if err != nil {
		return fmt.Errorf("create icon work dir: %w", err)
	}
	defer os.RemoveAll(iconWork)

	icoPath := filepath.Join(iconWork, "claude.ico")
	res, err := s.deps.runner().Run(ctx, "wrestool", []string{"-x", "-t", "14", exePath, "-o", icoPath}, run.Options{})
	if err != nil {
		return run.WrapError("wrestool", err, res)
	}

	res, err = s.deps.runner().Run(ctx, "icotool", []string{"-x", icoPath}, run.Options{Dir: iconWork})
	if err != nil {
		return run.WrapError("icotool", err, res)
	}

	for _, size := range s.deps.IconSizes {
		sizeDir := filepath.Join(outputDir, "share", "icons", "hicolor", fmt.Sprintf("%dx%d", size, size), "apps")
		if err := os.MkdirAll(sizeDir, 0o755); err != nil {
			return fmt.Errorf("create icon dir: %w", err)
		}

		matches, err := filepath.Glob(filepath.Join(iconWork, fmt.Sprintf("*_%dx%dx*.png", size, size)))
		if err != nil || len(matches) == 0 {
			s.deps.logger().Printf("no %dx%d icon extracted, skipping", size, size)
			continue
		}
		if err := copyFile(matches[0], filepath.Join(sizeDir, "claude-desktop.png")); err != nil {
			return err
		}
	}
	return nil
}

package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"howett.net/plist"

	"claudebuild/internal/asar"
	"claudebuild/internal/builderr"
	"claudebuild/internal/metadata"
	"claudebuild/internal/paths"
	"claudebuild/internal/run"
)

// macSource unwraps the universal DMG: a disk image holding the
// application bundle, whose Contents/Resources directory carries the
// same packed app archive as the Windows installer.
type macSource struct {
	base
}

func newMacSource(deps Deps) *macSource {
	return &macSource{
		base: base{
			deps:      deps,
			name:      "macos",
			cacheKey:  "mac",
			url:       deps.MacURL,
			installer: "Claude.dmg",
			metaName:  "mac_metadata.json",
		},
	}
}

func (s *macSource) RequiredCommands() []string {
	return []string{"7z", "npx", "npm", "convert", "icns2png"}
}

// Extract unpacks the DMG and locates Claude.app/Contents/Resources.
// 7z reports HFS+ header warnings as a nonzero exit even when extraction
// succeeds, so the exit code alone is not treated as a failure.
func (s *macSource) Extract(ctx context.Context, workDir string) (string, error) {
	s.deps.logger().Printf("extracting mac dmg")

	installer := s.InstallerPath()
	if !s.HasInstaller() {
		return "", &builderr.ExtractionError{Path: installer, Message: "installer not downloaded"}
	}

	extractDir := filepath.Join(workDir, "dmg-extract")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", fmt.Errorf("create extract dir: %w", err)
	}

	res, err := s.deps.runner().Run(ctx, "7z", []string{"x", "-y", installer, "-o" + extractDir}, run.Options{})
	if err != nil {
		s.deps.logger().Printf("7z exited nonzero (tolerated for HFS+): %v", run.WrapError("7z", err, res))
	}

	contents, err := findAppContents(extractDir)
	if err != nil {
		return "", err
	}

	resourcesDir := filepath.Join(contents, "Resources")
	if ok, _ := paths.DirExists(resourcesDir); !ok {
		return "", &builderr.ExtractionError{Path: resourcesDir, Message: "resources directory not found"}
	}
	return resourcesDir, nil
}

// findAppContents tries the fixed DMG layout first, then falls back to a
// recursive search that stops at the first application bundle found.
func findAppContents(extractDir string) (string, error) {
	fixed := filepath.Join(extractDir, "Claude", "Claude.app", "Contents")
	if ok, _ := paths.DirExists(fixed); ok {
		return fixed, nil
	}

	var found string
	walkErr := filepath.WalkDir(extractDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || d.Name() != "Claude.app" {
			return nil
		}
		contents := filepath.Join(path, "Contents")
		if ok, _ := paths.DirExists(contents); ok {
			found = contents
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return "", fmt.Errorf("search for app bundle: %w", walkErr)
	}
	if found == "" {
		return "", &builderr.ExtractionError{Path: extractDir, Message: "Claude.app/Contents not found in extracted dmg"}
	}
	return found, nil
}

// infoPlist carries the bundle manifest fields the pipeline reads.
type infoPlist struct {
	ShortVersion  string `plist:"CFBundleShortVersionString"`
	BundleVersion string `plist:"CFBundleVersion"`
	DisplayName   string `plist:"CFBundleDisplayName"`
	Name          string `plist:"CFBundleName"`
	Identifier    string `plist:"CFBundleIdentifier"`
}

func readPlist(path string) (*infoPlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plist: %w", err)
	}
	var info infoPlist
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse plist %s: %w", path, err)
	}
	return &info, nil
}

// ExtractMetadata reads the bundle property list, preferring the
// marketing version and falling back to the raw bundle version. The
// Electron version comes from the bundled framework plist, with the app
// manifest as a fallback.
func (s *macSource) ExtractMetadata(ctx context.Context, resourcesDir string) (*metadata.Version, error) {
	contents := filepath.Dir(resourcesDir)

	info, err := readPlist(filepath.Join(contents, "Info.plist"))
	if err != nil {
		return nil, err
	}

	version := info.ShortVersion
	if version == "" {
		version = info.BundleVersion
	}
	if version == "" {
		return nil, &builderr.MetadataError{Field: "version", Message: "neither CFBundleShortVersionString nor CFBundleVersion present"}
	}

	electron := s.electronVersionFromFramework(contents)
	nodeRequirement := ""
	appName := info.DisplayName

	if electron == "" || appName == "" {
		pkg, pkgErr := asar.ReadPackageJSON(ctx, s.deps.runner(), filepath.Join(resourcesDir, "app.asar"))
		if pkgErr == nil {
			if electron == "" {
				electron = pkg.DevDependencies["electron"]
			}
			if appName == "" {
				appName = pkg.ProductName
			}
			nodeRequirement = pkg.Engines["node"]
		}
	}
	if electron == "" {
		return nil, &builderr.MetadataError{Field: "electron_version", Message: "not found in framework plist or package.json"}
	}
	if appName == "" {
		appName = info.Name
	}
	if appName == "" {
		appName = "Claude"
	}

	bundleID := info.Identifier
	if bundleID == "" {
		bundleID = "com.anthropic.claudefordesktop"
	}

	return &metadata.Version{
		Version:         version,
		ElectronVersion: electron,
		NodeRequirement: nodeRequirement,
		AppName:         appName,
		BundleID:        bundleID,
		Source:          s.name,
	}, nil
}

func (s *macSource) electronVersionFromFramework(contents string) string {
	frameworkPlist := filepath.Join(contents,
		"Frameworks", "Electron Framework.framework", "Versions", "A", "Resources", "Info.plist")
	if ok, _ := paths.FileExists(frameworkPlist); !ok {
		return ""
	}
	info, err := readPlist(frameworkPlist)
	if err != nil {
		s.deps.logger().Printf("framework plist unreadable: %v", err)
		return ""
	}
	return info.BundleVersion
}

// ProcessIcons converts the bundle's icns icon into the hicolor tree.
// Missing or unconvertible icons only log a warning; the package is
// still usable without them.
func (s *macSource) ProcessIcons(ctx context.Context, resourcesDir, outputDir string) error {
	s.deps.logger().Printf("processing icons from mac icns")

	icnsFile := filepath.Join(resourcesDir, "electron.icns")
	if ok, _ := paths.FileExists(icnsFile); !ok {
		s.deps.logger().Printf("electron.icns not found, skipping icon processing")
		return nil
	}

	iconWork, err := os.MkdirTemp("", "claudebuild-icons-*")
	if err != nil {
		return fmt.Errorf("create icon work dir: %w", err)
	}
	defer os.RemoveAll(iconWork)

	res, err := s.deps.runner().Run(ctx, "icns2png", []string{"-x", "-o", iconWork, icnsFile}, run.Options{})
	if err != nil {
		s.deps.logger().Printf("icns conversion failed: %v", run.WrapError("icns2png", err, res))
		return nil
	}

	source := largestPNG(iconWork)
	if source == "" {
		s.deps.logger().Printf("no icons extracted from icns")
		return nil
	}

	sizes := append([]int{}, s.deps.IconSizes...)
	sizes = append(sizes, 512)
	for _, size := range sizes {
		sizeDir := filepath.Join(outputDir, "share", "icons", "hicolor", fmt.Sprintf("%dx%d", size, size), "apps")
		if err := os.MkdirAll(sizeDir, 0o755); err != nil {
			return fmt.Errorf("create icon dir: %w", err)
		}
		target := filepath.Join(sizeDir, "claude-desktop.png")
		res, err := s.deps.runner().Run(ctx, "convert",
			[]string{source, "-resize", fmt.Sprintf("%dx%d", size, size), target}, run.Options{})
		if err != nil {
			return run.WrapError("convert", err, res)
		}
	}
	return nil
}

func largestPNG(dir string) string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Slice(matches, func(i, j int) bool {
		si, ierr := os.Stat(matches[i])
		sj, jerr := os.Stat(matches[j])
		if ierr != nil || jerr != nil {
			return false
		}
		return si.Size() > sj.Size()
	})
	return matches[0]
}

// PostPatchApp replaces the macOS-only Swift addon with a Linux stub
// that keeps the same exported surface.
func (s *macSource) PostPatchApp(_ context.Context, appDir string) error {
	s.deps.logger().Printf("installing swift addon stub")

	stubDir := filepath.Join(appDir, "node_modules", "@ant", "claude-swift")
	if err := os.RemoveAll(stubDir); err != nil {
		return fmt.Errorf("remove mac swift addon: %w", err)
	}
	if err := os.MkdirAll(stubDir, 0o755); err != nil {
		return fmt.Errorf("create stub dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(stubDir, "index.js"), []byte(swiftStubIndex), 0o644); err != nil {
		return fmt.Errorf("write stub index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stubDir, "package.json"), []byte(swiftStubPackage), 0o644); err != nil {
		return fmt.Errorf("write stub package.json: %w", err)
	}

	// The bundle also resolves the addon through a js/ subdirectory.
	jsDir := filepath.Join(stubDir, "js")
	if err := os.MkdirAll(jsDir, 0o755); err != nil {
		return fmt.Errorf("create stub js dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(jsDir, "index.js"), []byte(swiftStubIndex), 0o644); err != nil {
		return fmt.Errorf("write stub js index: %w", err)
	}
	return nil
}

// PostAssemble drops mac-only native modules from the unpacked tree; the
// Linux node-pty is installed with the Electron dependencies instead.
func (s *macSource) PostAssemble(_ context.Context, libDir, _ string) error {
	unpacked := filepath.Join(libDir, "app.asar.unpacked")
	if ok, _ := paths.DirExists(unpacked); !ok {
		return nil
	}

	for _, rel := range []string{
		filepath.Join("node_modules", "@ant", "claude-swift"),
		filepath.Join("node_modules", "node-pty"),
	} {
		if err := os.RemoveAll(filepath.Join(unpacked, rel)); err != nil {
			return fmt.Errorf("remove %s: %w", rel, err)
		}
	}
	return nil
}

func (s *macSource) ExtraNPMDependencies() map[string]string {
	return map[string]string{"node-pty": "^1.0.0"}
}

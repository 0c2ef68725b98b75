// Package assemble turns an extracted installer into the Linux
// application tree: the patched app.asar, the launcher and desktop
// entry, the icon set, and a bundled Electron runtime.
package assemble

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"claudebuild/internal/asar"
	"claudebuild/internal/patch"
	"claudebuild/internal/paths"
	"claudebuild/internal/run"
	"claudebuild/internal/source"
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Assembler performs the asar patching and tree assembly stages.
type Assembler struct {
	Runner run.Runner
	Logger Logger
}

func (a *Assembler) logger() Logger {
	if a.Logger == nil {
		return noopLogger{}
	}
	return a.Logger
}

func (a *Assembler) runner() run.Runner {
	if a.Runner == nil {
		return run.CmdRunner{}
	}
	return a.Runner
}

const nativeBindingName = "claude-native-binding.node"

var nativeModulePath = filepath.Join("node_modules", "@ant", "claude-native")

// PatchAppASAR rewrites the vendor's app.asar for Linux: the platform
// native module is swapped for our build, source-specific fixes run,
// tray and i18n assets move inside the archive, and the configured
// patches apply. The repacked archive lands in workDir.
func (a *Assembler) PatchAppASAR(ctx context.Context, handler source.Handler, resourcesDir, nativeModule, workDir string, specs []patch.Spec) (string, []patch.Result, error) {
	a.logger().Printf("patching app.asar")

	appASAR := filepath.Join(resourcesDir, "app.asar")

	tmpDir, err := os.MkdirTemp("", "claudebuild-patch-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	appExtract := filepath.Join(tmpDir, "app")
	if err := asar.Extract(ctx, a.runner(), appASAR, appExtract); err != nil {
		return "", nil, err
	}

	nativeDir := filepath.Join(appExtract, nativeModulePath)
	if err := os.MkdirAll(nativeDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create native module dir: %w", err)
	}
	if err := copyFile(nativeModule, filepath.Join(nativeDir, nativeBindingName)); err != nil {
		return "", nil, fmt.Errorf("install native module: %w", err)
	}

	if err := handler.PostPatchApp(ctx, appExtract); err != nil {
		return "", nil, err
	}

	if err := a.copyAppResources(resourcesDir, appExtract); err != nil {
		return "", nil, err
	}

	results, err := patch.ApplyAll(appExtract, specs, a.logger())
	if err != nil {
		return "", results, err
	}

	newASAR := filepath.Join(workDir, "app.asar")
	if err := asar.Pack(ctx, a.runner(), appExtract, newASAR); err != nil {
		return "", results, err
	}
	return newASAR, results, nil
}

// copyAppResources moves the tray icons and i18n catalogs from the
// installer's resources directory into the app tree, where the packaged
// app expects them.
func (a *Assembler) copyAppResources(resourcesDir, appExtract string) error {
	appResources := filepath.Join(appExtract, "resources")
	if err := os.MkdirAll(appResources, 0o755); err != nil {
		return fmt.Errorf("create app resources dir: %w", err)
	}

	trayFiles, err := filepath.Glob(filepath.Join(resourcesDir, "Tray*"))
	if err != nil {
		return fmt.Errorf("glob tray icons: %w", err)
	}
	for _, tray := range trayFiles {
		if err := copyFile(tray, filepath.Join(appResources, filepath.Base(tray))); err != nil {
			return fmt.Errorf("copy tray icon: %w", err)
		}
	}

	i18nDir := filepath.Join(appResources, "i18n")
	if err := os.MkdirAll(i18nDir, 0o755); err != nil {
		return fmt.Errorf("create i18n dir: %w", err)
	}
	jsonFiles, err := filepath.Glob(filepath.Join(resourcesDir, "*.json"))
	if err != nil {
		return fmt.Errorf("glob i18n files: %w", err)
	}
	for _, jf := range jsonFiles {
		if filepath.Base(jf) == "build-props.json" {
			continue
		}
		if err := copyFile(jf, filepath.Join(i18nDir, filepath.Base(jf))); err != nil {
			return fmt.Errorf("copy i18n file: %w", err)
		}
	}
	return nil
}

// AssembleTree lays out the final application tree under outputDir. The
// previous tree is wiped first so stale files never survive a rebuild.
func (a *Assembler) AssembleTree(ctx context.Context, handler source.Handler, resourcesDir, appASAR, nativeModule, outputDir, electronVersion string) error {
	a.logger().Printf("assembling application tree")

	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("clean output dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := WriteResources(outputDir); err != nil {
		return err
	}

	libDir := filepath.Join(outputDir, "lib", "claude-desktop")
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return fmt.Errorf("create lib dir: %w", err)
	}
	if err := copyFile(appASAR, filepath.Join(libDir, "app.asar")); err != nil {
		return fmt.Errorf("copy app.asar: %w", err)
	}

	if err := a.copyUnpacked(resourcesDir, libDir, nativeModule); err != nil {
		return err
	}

	if err := handler.PostAssemble(ctx, libDir, resourcesDir); err != nil {
		return err
	}

	if err := handler.ProcessIcons(ctx, resourcesDir, outputDir); err != nil {
		return err
	}

	return a.installElectron(ctx, handler, libDir, electronVersion)
}

// copyUnpacked mirrors app.asar.unpacked into the tree and swaps its
// native module for the Linux build. Some releases ship no unpacked
// directory at all; that is not an error.
func (a *Assembler) copyUnpacked(resourcesDir, libDir, nativeModule string) error {
	unpackedSrc := filepath.Join(resourcesDir, "app.asar.unpacked")
	if _, err := os.Stat(unpackedSrc); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat app.asar.unpacked: %w", err)
	}

	unpackedDst := filepath.Join(libDir, "app.asar.unpacked")
	if err := copyTree(unpackedSrc, unpackedDst); err != nil {
		return fmt.Errorf("copy app.asar.unpacked: %w", err)
	}

	nativeDst := filepath.Join(unpackedDst, nativeModulePath)
	if ok, _ := paths.DirExists(nativeDst); ok {
		if err := copyFile(nativeModule, filepath.Join(nativeDst, nativeBindingName)); err != nil {
			return fmt.Errorf("replace unpacked native module: %w", err)
		}
	}
	return nil
}

// installElectron installs the Electron runtime matching the vendor
// bundle, plus any source-specific extras, into the tree's node_modules.
func (a *Assembler) installElectron(ctx context.Context, handler source.Handler, libDir, electronVersion string) error {
	a.logger().Printf("installing Electron %s", electronVersion)

	tmpDir, err := os.MkdirTemp("", "claudebuild-electron-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	deps := map[string]string{"electron": electronVersion}
	for name, version := range handler.ExtraNPMDependencies() {
		deps[name] = version
	}

	manifest := map[string]any{
		"name":         "claude-desktop-electron",
		"version":      "1.0.0",
		"private":      true,
		"dependencies": deps,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "package.json"), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	res, err := a.runner().Run(ctx, "npm", []string{"install", "--production"}, run.Options{Dir: tmpDir})
	if err != nil {
		return run.WrapError("npm install", err, res)
	}

	nodeModulesDst := filepath.Join(libDir, "node_modules")
	if err := copyTree(filepath.Join(tmpDir, "node_modules"), nodeModulesDst); err != nil {
		return fmt.Errorf("copy node_modules: %w", err)
	}

	return a.copyI18nToElectron(ctx, libDir, nodeModulesDst)
}

// copyI18nToElectron duplicates the i18n catalogs into Electron's own
// resources directory. With ELECTRON_FORCE_IS_PACKAGED set, the app
// resolves them against process.resourcesPath, which points there.
func (a *Assembler) copyI18nToElectron(ctx context.Context, libDir, nodeModulesDir string) error {
	appASAR := filepath.Join(libDir, "app.asar")
	if ok, _ := paths.FileExists(appASAR); !ok {
		return nil
	}

	electronResources := filepath.Join(nodeModulesDir, "electron", "dist", "resources")

	tmpDir, err := os.MkdirTemp("", "claudebuild-i18n-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := asar.Extract(ctx, a.runner(), appASAR, tmpDir); err != nil {
		return err
	}

	i18nSrc := filepath.Join(tmpDir, "resources", "i18n")
	jsonFiles, err := filepath.Glob(filepath.Join(i18nSrc, "*.json"))
	if err != nil || len(jsonFiles) == 0 {
		return nil
	}
	if err := os.MkdirAll(electronResources, 0o755); err != nil {
		return fmt.Errorf("create electron resources dir: %w", err)
	}
	for _, jf := range jsonFiles {
		if err := copyFile(jf, filepath.Join(electronResources, filepath.Base(jf))); err != nil {
			return fmt.Errorf("copy i18n to electron: %w", err)
		}
	}
	return nil
}

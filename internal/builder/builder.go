// Package builder orchestrates the full build: acquire the installer,
// unpack it, derive metadata, build the native module, patch and
// assemble the application tree, and produce the Linux package.
package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"claudebuild/internal/assemble"
	"claudebuild/internal/config"
	"claudebuild/internal/metadata"
	"claudebuild/internal/native"
	"claudebuild/internal/patch"
	"claudebuild/internal/paths"
	"claudebuild/internal/pkgbuild"
	"claudebuild/internal/run"
	"claudebuild/internal/source"
	"claudebuild/internal/tools"
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Options controls a single build run.
type Options struct {
	Format                   string
	Download                 bool
	ForceDownload            bool
	SkipDeps                 bool
	PatchClaudeCodePlatforms bool
}

// Builder drives the pipeline for one source handler. Stages advance
// strictly in order; the first failure halts the run with no retries and
// no partial artifact.
type Builder struct {
	Config   config.Config
	Paths    paths.BuildPaths
	Handler  source.Handler
	Runner   run.Runner
	Logger   Logger
	Reporter StageReporter
	Options  Options

	stage    Stage
	metadata *metadata.Version
}

func (b *Builder) logger() Logger {
	if b.Logger == nil {
		return noopLogger{}
	}
	return b.Logger
}

func (b *Builder) reporter() StageReporter {
	if b.Reporter == nil {
		return nopReporter{}
	}
	return b.Reporter
}

// Stage returns the pipeline position after the last Run.
func (b *Builder) Stage() Stage { return b.stage }

// Metadata returns the resolved version metadata, or nil before the
// resolve stage has completed.
func (b *Builder) Metadata() *metadata.Version { return b.metadata }

// Run executes the pipeline and returns the built package path.
func (b *Builder) Run(ctx context.Context) (string, error) {
	b.stage = StageNotStarted
	b.metadata = nil

	if !b.Options.SkipDeps {
		if err := tools.Check(ctx, b.Handler.RequiredCommands()); err != nil {
			return "", err
		}
	}

	if err := b.Paths.EnsureCacheDirs(); err != nil {
		return "", err
	}
	if err := b.Paths.ResetWorkDir(); err != nil {
		return "", err
	}

	var (
		resourcesDir string
		nativeModule string
		patchedASAR  string
		artifact     string
	)

	steps := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageAcquireInstaller, func(ctx context.Context) error {
			return b.acquireInstaller(ctx)
		}},
		{StageExtract, func(ctx context.Context) error {
			var err error
			resourcesDir, err = b.Handler.Extract(ctx, b.Paths.WorkDir)
			return err
		}},
		{StageResolveMetadata, func(ctx context.Context) error {
			return b.resolveMetadata(ctx, resourcesDir)
		}},
		{StageBuildNativeModule, func(ctx context.Context) error {
			var err error
			nativeModule, err = native.Build(ctx, b.Runner, b.logger(), b.nativeModuleDir(), b.Paths.WorkDir)
			return err
		}},
		{StagePatchBundle, func(ctx context.Context) error {
			var err error
			patchedASAR, err = b.patchBundle(ctx, resourcesDir, nativeModule)
			return err
		}},
		{StageAssembleTree, func(ctx context.Context) error {
			asm := &assemble.Assembler{Runner: b.Runner, Logger: b.logger()}
			return asm.AssembleTree(ctx, b.Handler, resourcesDir, patchedASAR, nativeModule,
				b.Paths.OutputDir, b.metadata.ElectronVersion)
		}},
		{StagePackage, func(ctx context.Context) error {
			var err error
			artifact, err = b.buildPackage(ctx)
			return err
		}},
	}

	for _, step := range steps {
		b.stage = step.stage
		b.reporter().StageStarted(step.stage)
		err := step.fn(ctx)
		b.reporter().StageFinished(step.stage, err)
		if err != nil {
			b.stage = StageFailed
			return "", fmt.Errorf("%s: %w", step.stage, err)
		}
	}

	b.stage = StageDone
	b.logger().Printf("build complete: %s", artifact)
	return artifact, nil
}

func (b *Builder) acquireInstaller(ctx context.Context) error {
	if !b.Handler.HasInstaller() {
		if !b.Options.Download {
			return fmt.Errorf("no %s installer found; enable download or place %s in the cache",
				b.Handler.Name(), b.Handler.InstallerFilename())
		}
		_, err := b.Handler.Download(ctx, b.Options.ForceDownload)
		return err
	}
	if b.Options.ForceDownload {
		_, err := b.Handler.Download(ctx, true)
		return err
	}
	return nil
}

func (b *Builder) resolveMetadata(ctx context.Context, resourcesDir string) error {
	cache := metadata.Cache{Path: b.Paths.MetadataCacheFile(b.Handler.MetadataCacheName())}
	v, err := cache.Resolve(ctx, b.Handler.InstallerPath(), func(ctx context.Context) (*metadata.Version, error) {
		return b.Handler.ExtractMetadata(ctx, resourcesDir)
	})
	if err != nil {
		return err
	}
	b.metadata = v
	b.logger().Printf("building %s %s (from %s) with Electron %s",
		v.AppName, v.Version, v.Source, v.ElectronVersion)
	return nil
}

func (b *Builder) nativeModuleDir() string {
	dir := b.Config.Native.ModuleDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(b.Paths.Root, dir)
	}
	return dir
}

func (b *Builder) patchBundle(ctx context.Context, resourcesDir, nativeModule string) (string, error) {
	var specs []patch.Spec
	if b.Config.Patches.TitleBarEnabled() {
		specs = append(specs, patch.TitleBar())
	}
	if b.Options.PatchClaudeCodePlatforms || b.Config.Patches.ClaudeCodePlatforms {
		specs = append(specs, patch.ClaudeCodePlatforms())
	}

	asm := &assemble.Assembler{Runner: b.Runner, Logger: b.logger()}
	patched, _, err := asm.PatchAppASAR(ctx, b.Handler, resourcesDir, nativeModule, b.Paths.WorkDir, specs)
	return patched, err
}

func (b *Builder) buildPackage(ctx context.Context) (string, error) {
	packager := &pkgbuild.Packager{
		Runner:     b.Runner,
		Logger:     b.logger(),
		PackageDir: b.Paths.PackageDir,
	}

	format := b.Options.Format
	if format == "" {
		format = pkgbuild.FormatDeb
	}

	return packager.Build(ctx, format, b.Paths.OutputDir, pkgbuild.Info{
		Name:         b.Config.Package.Name,
		Version:      b.metadata.Version,
		Architecture: b.Config.Package.Architecture,
		Maintainer:   b.Config.Package.Maintainer,
		Description:  b.Config.Package.Description,
		SourceName:   b.Handler.Name(),
	})
}

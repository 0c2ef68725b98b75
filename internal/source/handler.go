// Package source implements the per-platform installer handlers. Each
// handler owns its installer format: how to download it, unwrap it into
// the canonical resources directory, and pull version metadata out of it.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"claudebuild/internal/download"
	"claudebuild/internal/metadata"
	"claudebuild/internal/paths"
	"claudebuild/internal/run"
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Handler is the capability contract shared by all installer sources.
// The orchestrator never branches on the concrete variant; anything
// platform-specific happens behind these methods.
type Handler interface {
	Name() string
	CacheKey() string
	DownloadURL() string
	InstallerFilename() string
	MetadataCacheName() string
	RequiredCommands() []string

	InstallerPath() string
	HasInstaller() bool
	Download(ctx context.Context, force bool) (string, error)
	LatestVersion(ctx context.Context) (string, error)
	CheckForUpdate(ctx context.Context) (download.UpdateCheck, error)

	// Extract unpacks the installer under workDir and returns the
	// resources directory containing app.asar.
	Extract(ctx context.Context, workDir string) (string, error)

	// ExtractMetadata derives version metadata from an extracted tree.
	ExtractMetadata(ctx context.Context, resourcesDir string) (*metadata.Version, error)

	// ProcessIcons converts the platform icon assets into the hicolor
	// tree under outputDir.
	ProcessIcons(ctx context.Context, resourcesDir, outputDir string) error

	// PostPatchApp applies source-specific fixes to the extracted app
	// before it is repacked.
	PostPatchApp(ctx context.Context, appDir string) error

	// PostAssemble runs source-specific cleanup on the assembled tree.
	PostAssemble(ctx context.Context, libDir, resourcesDir string) error

	// ExtraNPMDependencies lists additional packages the assembled app
	// needs on Linux (beyond electron itself).
	ExtraNPMDependencies() map[string]string
}

// Deps carries the collaborators a handler needs. Handlers hold no other
// state, so two handlers never share anything mutable.
type Deps struct {
	CacheDir  string
	Downloads *download.Manager
	Runner    run.Runner
	Logger    Logger
	IconSizes []int

	WindowsURL string
	MacURL     string
}

func (d Deps) logger() Logger {
	if d.Logger == nil {
		return noopLogger{}
	}
	return d.Logger
}

func (d Deps) runner() run.Runner {
	if d.Runner == nil {
		return run.CmdRunner{}
	}
	return d.Runner
}

// New returns the handler for a source-name token. Unknown tokens fail
// fast so a typo never silently builds the wrong variant.
func New(name string, deps Deps) (Handler, error) {
	switch name {
	case "windows":
		return newWindowsSource(deps), nil
	case "macos":
		return newMacSource(deps), nil
	default:
		return nil, fmt.Errorf("unknown source %q (available: %s)", name, strings.Join(Names(), ", "))
	}
}

// Names lists the supported source tokens.
func Names() []string {
	names := []string{"windows", "macos"}
	sort.Strings(names)
	return names
}

// base holds the download/cache plumbing shared by the concrete sources.
type base struct {
	deps Deps

	name      string
	cacheKey  string
	url       string
	installer string
	metaName  string
}

func (b *base) Name() string              { return b.name }
func (b *base) CacheKey() string          { return b.cacheKey }
func (b *base) DownloadURL() string       { return b.url }
func (b *base) InstallerFilename() string { return b.installer }
func (b *base) MetadataCacheName() string { return b.metaName }

func (b *base) InstallerPath() string {
	return filepath.Join(b.deps.CacheDir, b.installer)
}

func (b *base) HasInstaller() bool {
	ok, err := paths.FileExists(b.InstallerPath())
	return err == nil && ok
}

// Download fetches the installer unless a cached copy exists. The cached
// copy is reused without touching the network: resolving the redirect
// needs a browser launch and is far too expensive for a freshness probe.
func (b *base) Download(ctx context.Context, force bool) (string, error) {
	dest := b.InstallerPath()
	if !force && b.HasInstaller() {
		b.deps.logger().Printf("using cached installer: %s", dest)
		return dest, nil
	}

	b.deps.logger().Printf("downloading %s installer", b.name)
	path, _, err := b.deps.Downloads.Fetch(ctx, b.url, dest, b.cacheKey)
	return path, err
}

func (b *base) LatestVersion(ctx context.Context) (string, error) {
	return b.deps.Downloads.LatestVersion(ctx, b.url)
}

func (b *base) CheckForUpdate(ctx context.Context) (download.UpdateCheck, error) {
	return b.deps.Downloads.CheckForUpdate(ctx, b.url, b.cacheKey)
}

func (b *base) ExtraNPMDependencies() map[string]string { return nil }

func (b *base) PostPatchApp(context.Context, string) error { return nil }

func (b *base) PostAssemble(context.Context, string, string) error { return nil }

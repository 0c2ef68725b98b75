package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"claudebuild/internal/config"
	"claudebuild/internal/download"
	"claudebuild/internal/logx"
	"claudebuild/internal/metadata"
	"claudebuild/internal/paths"
	"claudebuild/internal/source"
	"claudebuild/internal/tui"
)

// cmdEnv bundles the project paths, config, and log file every command
// starts from.
type cmdEnv struct {
	paths  paths.BuildPaths
	cfg    config.Config
	logger *log.Logger
	closer io.Closer
}

func loadEnv(command string) (*cmdEnv, error) {
	pp, err := paths.Resolve(rootDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}

	if err := pp.EnsureCacheDirs(); err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(pp, command)
	if err != nil {
		return nil, err
	}
	logger.Printf("claudebuild %s: root=%s", command, pp.Root)

	return &cmdEnv{paths: pp, cfg: cfg, logger: logger, closer: closer}, nil
}

func (e *cmdEnv) close() {
	if e.closer != nil {
		e.closer.Close()
	}
}

func (e *cmdEnv) handler(name string) (source.Handler, error) {
	mgr := download.NewManager(e.paths.CacheDir, nil, e.logger)
	return source.New(name, source.Deps{
		CacheDir:   e.paths.CacheDir,
		Downloads:  mgr,
		Logger:     e.logger,
		IconSizes:  e.cfg.Icons.Sizes,
		WindowsURL: e.cfg.Sources.WindowsURL,
		MacURL:     e.cfg.Sources.MacURL,
	})
}

// resolveMetadata extracts version metadata through the hash-gated
// cache, unpacking the installer into a scratch directory only on a
// cache miss.
func (e *cmdEnv) resolveMetadata(ctx context.Context, handler source.Handler) (*metadata.Version, error) {
	cache := metadata.Cache{Path: e.paths.MetadataCacheFile(handler.MetadataCacheName())}
	return cache.Resolve(ctx, handler.InstallerPath(), func(ctx context.Context) (*metadata.Version, error) {
		tmpDir, err := os.MkdirTemp("", "claudebuild-info-*")
		if err != nil {
			return nil, fmt.Errorf("create scratch dir: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		resourcesDir, err := handler.Extract(ctx, tmpDir)
		if err != nil {
			return nil, err
		}
		return handler.ExtractMetadata(ctx, resourcesDir)
	})
}

// statusLine renders a spinner for a blocking setup phase (redirect
// resolution, download, metadata extraction) when the writer is an
// interactive terminal; otherwise it prints the message once. The
// returned stop function clears the spinner line.
func statusLine(out io.Writer, msg string) func() {
	if tui.DetectMode(out, false, outputJSON) != tui.ModeTUI {
		fmt.Fprintln(out, msg)
		return func() {}
	}
	sw := tui.NewStatusWriter(out)
	sw.Update(msg)
	return sw.Stop
}

func copyFileTo(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

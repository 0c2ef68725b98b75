package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// BuildPaths captures canonical locations for a build run. Everything is
// anchored under a single project root (the working directory by default)
// so a build never scatters state across the filesystem.
type BuildPaths struct {
	Root       string
	ConfigFile string
	CacheDir   string
	WorkDir    string
	OutputDir  string
	PackageDir string
	LogsDir    string
}

// Resolve determines the project root using the optional --root flag or
// the current working directory when the flag is empty.
func Resolve(rootFlag string) (BuildPaths, error) {
	var (
		root string
		err  error
	)

	if rootFlag != "" {
		root, err = filepath.Abs(rootFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return BuildPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newBuildPaths(root), nil
}

func newBuildPaths(root string) BuildPaths {
	return BuildPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, "claudebuild.yaml"),
		CacheDir:   filepath.Join(root, ".cache", "downloads"),
		WorkDir:    filepath.Join(root, "build"),
		OutputDir:  filepath.Join(root, "claude-desktop"),
		PackageDir: filepath.Join(root, "packages"),
		LogsDir:    filepath.Join(root, "logs"),
	}
}

// MetadataCacheFile returns the metadata cache file with the given name.
// The windows source historically used the bare name, the mac source a
// prefixed one; both live in the download cache directory.
func (p BuildPaths) MetadataCacheFile(name string) string {
	return filepath.Join(p.CacheDir, name)
}

// EnsureCacheDirs creates the download cache and logs directories.
func (p BuildPaths) EnsureCacheDirs() error {
	for _, dir := range []string{p.CacheDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ResetWorkDir wipes and recreates the working directory. Every build
// starts from an empty tree so partial state from an aborted run cannot
// leak into the next one.
func (p BuildPaths) ResetWorkDir() error {
	if err := os.RemoveAll(p.WorkDir); err != nil {
		return fmt.Errorf("clean work dir: %w", err)
	}
	if err := os.MkdirAll(p.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

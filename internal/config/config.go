package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures build configuration for a project. A missing config
// file yields the defaults; a present file is merged over them.
type Config struct {
	Version        int                  `yaml:"version"`
	Sources        SourcesConfig        `yaml:"sources"`
	Package        PackageConfig        `yaml:"package"`
	Native         NativeConfig         `yaml:"native"`
	Icons          IconsConfig          `yaml:"icons"`
	Patches        PatchesConfig        `yaml:"patches"`
	SystemPackages SystemPackagesConfig `yaml:"system_packages"`
}

// SourcesConfig holds the redirect endpoints for each installer source.
// The endpoints point at the vendor's "latest" redirect, which must be
// resolved through the anti-automation challenge before downloading.
type SourcesConfig struct {
	WindowsURL string `yaml:"windows_url"`
	MacURL     string `yaml:"mac_url"`
}

// PackageConfig describes the produced Linux package.
type PackageConfig struct {
	Name         string `yaml:"name"`
	Architecture string `yaml:"architecture"`
	Maintainer   string `yaml:"maintainer"`
	Description  string `yaml:"description"`
}

// NativeConfig locates the native addon sources built as a replacement
// for the vendor's platform-specific module.
type NativeConfig struct {
	ModuleDir string `yaml:"module_dir"`
}

// IconsConfig controls the hicolor icon sizes emitted during assembly.
type IconsConfig struct {
	Sizes []int `yaml:"sizes"`
}

// PatchesConfig toggles optional bundle patches.
type PatchesConfig struct {
	TitleBar            *bool `yaml:"title_bar,omitempty"`
	ClaudeCodePlatforms bool  `yaml:"claude_code_platforms"`
}

// SystemPackagesConfig lists the distro packages that provide the
// external tools each source needs.
type SystemPackagesConfig struct {
	Debian    []string `yaml:"debian"`
	DebianMac []string `yaml:"debian_mac"`
	DNF       []string `yaml:"dnf"`
	DNFMac    []string `yaml:"dnf_mac"`
}

// AptPackages returns the deduplicated union of the Debian package
// lists across both installer sources.
func (s SystemPackagesConfig) AptPackages() []string {
	return dedup(s.Debian, s.DebianMac)
}

// DNFPackages returns the deduplicated union of the DNF package lists
// across both installer sources.
func (s SystemPackagesConfig) DNFPackages() []string {
	return dedup(s.DNF, s.DNFMac)
}

func dedup(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, name := range list {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// TitleBarEnabled returns the effective title bar patch toggle.
func (p PatchesConfig) TitleBarEnabled() bool {
	if p.TitleBar == nil {
		return true
	}
	return *p.TitleBar
}

const (
	defaultWindowsURL = "https://claude.ai/redirect/claudedotcom.v1.290130bf-1c36-4eb0-9a93-2410ca43ae53/api/desktop/win32/x64/exe/latest/redirect"
	defaultMacURL     = "https://claude.ai/redirect/claudedotcom.v1.290130bf-1c36-4eb0-9a93-2410ca43ae53/api/desktop/darwin/universal/dmg/latest/redirect"
)

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Sources: SourcesConfig{
			WindowsURL: defaultWindowsURL,
			MacURL:     defaultMacURL,
		},
		Package: PackageConfig{
			Name:         "claude-desktop",
			Architecture: "amd64",
			Maintainer:   "Claude Desktop Linux Contributors",
			Description:  "Unofficial Claude Desktop for Linux",
		},
		Native: NativeConfig{
			ModuleDir: "native/patchy-cnb",
		},
		Icons: IconsConfig{
			Sizes: []int{16, 24, 32, 48, 64, 128, 256},
		},
		SystemPackages: SystemPackagesConfig{
			Debian:    []string{"p7zip-full", "nodejs", "npm", "imagemagick", "icoutils"},
			DebianMac: []string{"p7zip-full", "nodejs", "npm", "imagemagick", "icnsutils"},
			DNF:       []string{"p7zip", "p7zip-plugins", "nodejs", "ImageMagick", "icoutils"},
			DNFMac:    []string{"p7zip", "p7zip-plugins", "nodejs", "ImageMagick", "libicns-utils"},
		},
	}
}

// Load reads the YAML config at path, merging it over the defaults. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks invariants the rest of the pipeline relies on.
func (c Config) Validate() error {
	if c.Sources.WindowsURL == "" {
		return errors.New("sources.windows_url must not be empty")
	}
	if c.Sources.MacURL == "" {
		return errors.New("sources.mac_url must not be empty")
	}
	if c.Package.Name == "" {
		return errors.New("package.name must not be empty")
	}
	if c.Package.Architecture == "" {
		return errors.New("package.architecture must not be empty")
	}
	for _, size := range c.Icons.Sizes {
		if size <= 0 {
			return fmt.Errorf("icons.sizes contains invalid size %d", size)
		}
	}
	return nil
}

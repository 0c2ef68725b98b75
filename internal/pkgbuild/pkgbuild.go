// Package pkgbuild turns the assembled application tree into a Linux
// package, either a Debian .deb or an RPM.
package pkgbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"claudebuild/internal/builderr"
	"claudebuild/internal/run"
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Formats supported by Build.
const (
	FormatDeb = "deb"
	FormatRPM = "rpm"
)

// Info carries the identity fields stamped into the package metadata.
type Info struct {
	Name         string
	Version      string
	Architecture string
	Maintainer   string
	Description  string
	SourceName   string
}

// Packager renders package metadata and drives the distro build tools.
type Packager struct {
	Runner     run.Runner
	Logger     Logger
	PackageDir string
}

func (p *Packager) logger() Logger {
	if p.Logger == nil {
		return noopLogger{}
	}
	return p.Logger
}

func (p *Packager) runner() run.Runner {
	if p.Runner == nil {
		return run.CmdRunner{}
	}
	return p.Runner
}

// Build produces a package of the given format from the assembled tree
// at outputDir and returns the artifact path.
func (p *Packager) Build(ctx context.Context, format, outputDir string, info Info) (string, error) {
	switch format {
	case FormatDeb:
		return p.BuildDeb(ctx, outputDir, info)
	case FormatRPM:
		return p.BuildRPM(ctx, outputDir, info)
	default:
		return "", &builderr.PackagingError{Format: format, Message: "unknown package format (available: deb, rpm)"}
	}
}

const descriptionBody = `Claude Desktop is the official desktop application for Claude.ai,
repackaged for Linux systems with Electron bundled.`

// ControlStanza renders the DEBIAN/control file contents.
func ControlStanza(info Info) string {
	desc := info.Description
	if info.SourceName != "" {
		desc += fmt.Sprintf(" (from %s source)", info.SourceName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Package: %s\n", info.Name)
	fmt.Fprintf(&b, "Version: %s\n", info.Version)
	fmt.Fprintf(&b, "Architecture: %s\n", info.Architecture)
	fmt.Fprintf(&b, "Maintainer: %s\n", info.Maintainer)
	fmt.Fprintf(&b, "Description: %s\n", desc)
	for _, line := range strings.Split(descriptionBody, "\n") {
		fmt.Fprintf(&b, " %s\n", line)
	}
	return b.String()
}

// BuildDeb stages the tree under usr/, writes the control file, and
// invokes dpkg-deb.
func (p *Packager) BuildDeb(ctx context.Context, outputDir string, info Info) (string, error) {
	p.logger().Printf("building .deb package")

	pkgName := fmt.Sprintf("%s_%s_%s", info.Name, info.Version, info.Architecture)
	pkgRoot := filepath.Join(p.PackageDir, pkgName)

	if err := os.RemoveAll(pkgRoot); err != nil {
		return "", &builderr.PackagingError{Format: FormatDeb, Message: "clean package root", Err: err}
	}
	if err := copyTree(outputDir, filepath.Join(pkgRoot, "usr")); err != nil {
		return "", &builderr.PackagingError{Format: FormatDeb, Message: "stage package tree", Err: err}
	}

	debianDir := filepath.Join(pkgRoot, "DEBIAN")
	if err := os.MkdirAll(debianDir, 0o755); err != nil {
		return "", &builderr.PackagingError{Format: FormatDeb, Message: "create DEBIAN dir", Err: err}
	}
	if err := os.WriteFile(filepath.Join(debianDir, "control"), []byte(ControlStanza(info)), 0o644); err != nil {
		return "", &builderr.PackagingError{Format: FormatDeb, Message: "write control file", Err: err}
	}

	res, err := p.runner().Run(ctx, "dpkg-deb", []string{"--build", pkgRoot}, run.Options{})
	if err != nil {
		return "", &builderr.PackagingError{Format: FormatDeb, Err: run.WrapError("dpkg-deb", err, res)}
	}

	artifact := filepath.Join(p.PackageDir, pkgName+".deb")
	p.logger().Printf("built %s", artifact)
	return artifact, nil
}

// SpecFile renders the RPM spec for the assembled tree.
func SpecFile(info Info) string {
	desc := info.Description
	if info.SourceName != "" {
		desc += fmt.Sprintf(" (from %s source)", info.SourceName)
	}

	return fmt.Sprintf(`Name: %s
Version: %s
Release: 1%%{?dist}
Summary: %s
License: Proprietary
URL: https://claude.ai

%%description
%s

%%prep
%%setup -q

%%install
mkdir -p %%{buildroot}/usr
cp -r * %%{buildroot}/usr/

%%files
/usr/bin/claude-desktop
/usr/lib/claude-desktop
/usr/share/applications/claude-desktop.desktop
/usr/share/icons/hicolor/*/apps/claude-desktop.png

%%changelog
* %s %s
- Automated build of version %s
`,
		info.Name, info.Version, desc, descriptionBody,
		time.Now().Format("Mon Jan 02 2006"), info.Maintainer, info.Version)
}

// BuildRPM stages a versioned source tarball and invokes rpmbuild with
// the package directory as topdir.
func (p *Packager) BuildRPM(ctx context.Context, outputDir string, info Info) (string, error) {
	p.logger().Printf("building .rpm package")

	rpmRoot := filepath.Join(p.PackageDir, "rpmbuild")
	for _, sub := range []string{"BUILD", "RPMS", "SOURCES", "SPECS", "SRPMS"} {
		if err := os.MkdirAll(filepath.Join(rpmRoot, sub), 0o755); err != nil {
			return "", &builderr.PackagingError{Format: FormatRPM, Message: "create rpmbuild tree", Err: err}
		}
	}

	// %setup expects the tarball to unpack into name-version, so the
	// tree is staged under that directory name first.
	stageDir, err := os.MkdirTemp("", "claudebuild-rpm-*")
	if err != nil {
		return "", &builderr.PackagingError{Format: FormatRPM, Message: "create staging dir", Err: err}
	}
	defer os.RemoveAll(stageDir)

	versionedName := fmt.Sprintf("%s-%s", info.Name, info.Version)
	if err := copyTree(outputDir, filepath.Join(stageDir, versionedName)); err != nil {
		return "", &builderr.PackagingError{Format: FormatRPM, Message: "stage source tree", Err: err}
	}

	tarPath := filepath.Join(rpmRoot, "SOURCES", versionedName+".tar.gz")
	res, err := p.runner().Run(ctx, "tar", []string{"czf", tarPath, "-C", stageDir, versionedName}, run.Options{})
	if err != nil {
		return "", &builderr.PackagingError{Format: FormatRPM, Err: run.WrapError("tar", err, res)}
	}

	specPath := filepath.Join(rpmRoot, "SPECS", info.Name+".spec")
	if err := os.WriteFile(specPath, []byte(SpecFile(info)), 0o644); err != nil {
		return "", &builderr.PackagingError{Format: FormatRPM, Message: "write spec file", Err: err}
	}

	res, err = p.runner().Run(ctx, "rpmbuild",
		[]string{"-bb", specPath, "--define", "_topdir " + rpmRoot}, run.Options{})
	if err != nil {
		return "", &builderr.PackagingError{Format: FormatRPM, Err: run.WrapError("rpmbuild", err, res)}
	}

	artifact, err := locateRPM(filepath.Join(rpmRoot, "RPMS"))
	if err != nil {
		return "", err
	}

	final := filepath.Join(p.PackageDir, filepath.Base(artifact))
	if err := os.Rename(artifact, final); err != nil {
		return "", &builderr.PackagingError{Format: FormatRPM, Message: "move artifact", Err: err}
	}
	p.logger().Printf("built %s", final)
	return final, nil
}

func locateRPM(rpmsDir string) (string, error) {
	var found string
	err := filepath.WalkDir(rpmsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".rpm") {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", &builderr.PackagingError{Format: FormatRPM, Message: "scan RPMS dir", Err: err}
	}
	if found == "" {
		return "", &builderr.PackagingError{Format: FormatRPM, Message: "no .rpm produced by rpmbuild"}
	}
	return found, nil
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
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

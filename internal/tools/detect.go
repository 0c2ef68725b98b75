// Package tools resolves the external commands the build pipeline
// depends on and reports whether each one is present and recent enough.
package tools

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver/v4"
)

// Status captures the resolved state for one external command.
type Status struct {
	Tool      string `json:"tool"`
	Version   string `json:"version,omitempty"`
	Minimum   string `json:"minimum,omitempty"`
	Path      string `json:"path,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
	Satisfied bool   `json:"satisfied"`
	Error     string `json:"error,omitempty"`
}

// Detect resolves every known tool from PATH with a version probe.
func Detect(ctx context.Context) []Status {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	var statuses []Status
	for _, name := range KnownTools() {
		def, _ := Definition(name)
		statuses = append(statuses, detectOne(ctx, def))
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Tool < statuses[j].Tool })
	return statuses
}

func detectOne(ctx context.Context, def ToolDefinition) Status {
	status := Status{Tool: def.Name, Minimum: def.MinimumVersion, Purpose: def.Purpose}

	path, err := exec.LookPath(def.Executable)
	if err != nil {
		status.Error = fmt.Sprintf("%s not found in PATH", def.Executable)
		return status
	}
	status.Path = path

	if len(def.VersionArgs) == 0 {
		status.Satisfied = true
		return status
	}

	version, err := readVersion(ctx, path, def.VersionArgs)
	if err != nil {
		// The binary exists; a failed probe is reported but not fatal.
		status.Satisfied = def.MinimumVersion == ""
		status.Error = err.Error()
		return status
	}

	status.Version = version
	status.Satisfied = meetsMinimum(version, def.MinimumVersion)
	if !status.Satisfied {
		status.Error = fmt.Sprintf("version %s below minimum %s", version, def.MinimumVersion)
	}
	return status
}

func readVersion(ctx context.Context, path string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("version probe: %w", err)
	}
	line := firstLine(strings.TrimSpace(string(output)))
	return normalizeVersion(line), nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

var versionPattern = regexp.MustCompile(`([0-9]+)(?:\.([0-9]+))?(?:\.([0-9]+))?`)

// normalizeVersion pulls the leading numeric version out of banner
// lines like "v22.1.0" or "Version: ImageMagick 6.9.11-60".
func normalizeVersion(line string) string {
	match := versionPattern.FindString(line)
	if match == "" {
		return line
	}
	return match
}

func meetsMinimum(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	if version == "" {
		return false
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return true
	}
	m, err := semver.ParseTolerant(minimum)
	if err != nil {
		return true
	}
	return v.GTE(m)
}

// Check verifies that each required command resolves and meets its
// minimum. Unknown names degrade to a plain PATH lookup.
func Check(ctx context.Context, required []string) error {
	var missing []string
	for _, name := range required {
		def, ok := Definition(name)
		if !ok {
			def = ToolDefinition{Name: name, Executable: name}
		}
		status := detectOne(ctx, def)
		if !status.Satisfied {
			missing = append(missing, fmt.Sprintf("%s (%s)", name, status.Error))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing or outdated commands: %s", strings.Join(missing, ", "))
	}
	return nil
}

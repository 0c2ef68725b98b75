package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"claudebuild/internal/config"
	"claudebuild/internal/tools"
)

var checkStrict bool

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check external tool availability",
		RunE:  runCheck,
	}

	cmd.Flags().BoolVar(&checkStrict, "strict", false, "fail when required tools are missing or outdated")

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	env, err := loadEnv("check")
	if err != nil {
		return err
	}
	defer env.close()

	statuses := tools.Detect(cmd.Context())
	for _, st := range statuses {
		env.logger.Printf("tool %s: version=%s satisfied=%v error=%s", st.Tool, st.Version, st.Satisfied, st.Error)
	}

	if outputJSON {
		payload := struct {
			Root  string         `json:"root"`
			Tools []tools.Status `json:"tools"`
		}{Root: env.paths.Root, Tools: statuses}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
	} else {
		printCheckResult(cmd, env.paths.Root, statuses)
		if anyUnsatisfied(statuses) {
			printInstallHint(cmd, env.cfg.SystemPackages)
		}
	}

	if checkStrict {
		return ensureStrict(statuses)
	}
	return nil
}

func printCheckResult(cmd *cobra.Command, root string, statuses []tools.Status) {
	bold := lipgloss.NewStyle().Bold(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faint := lipgloss.NewStyle().Faint(true)

	cmd.Println(bold.Render("Project:") + " " + root)
	cmd.Println()

	for _, st := range statuses {
		if st.Satisfied {
			headline := green.Render("✓") + " " + bold.Render(st.Tool)
			if st.Version != "" {
				headline += " v" + st.Version
			}
			if st.Minimum != "" {
				headline += faint.Render(" (minimum: " + st.Minimum + ")")
			}
			cmd.Println(headline)

			detail := st.Purpose
			if st.Path != "" {
				detail += " · " + st.Path
			}
			cmd.Println(faint.Render("  " + detail))
		} else {
			headline := red.Render("✗") + " " + bold.Render(st.Tool)
			if st.Error != "" {
				headline += red.Render(" (" + st.Error + ")")
			}
			cmd.Println(headline)
			if st.Purpose != "" {
				cmd.Println(faint.Render("  " + st.Purpose))
			}
		}
		cmd.Println()
	}
}

func anyUnsatisfied(statuses []tools.Status) bool {
	for _, st := range statuses {
		if !st.Satisfied {
			return true
		}
	}
	return false
}

// printInstallHint suggests the distro packages that provide the
// missing tools.
func printInstallHint(cmd *cobra.Command, pkgs config.SystemPackagesConfig) {
	faint := lipgloss.NewStyle().Faint(true)

	cmd.Println("Install the packaged tools with:")
	if apt := pkgs.AptPackages(); len(apt) > 0 {
		cmd.Println(faint.Render("  sudo apt install " + strings.Join(apt, " ")))
	}
	if dnf := pkgs.DNFPackages(); len(dnf) > 0 {
		cmd.Println(faint.Render("  sudo dnf install " + strings.Join(dnf, " ")))
	}
}

func ensureStrict(statuses []tools.Status) error {
	var failures []string
	for _, st := range statuses {
		if st.Satisfied {
			continue
		}
		msg := st.Tool
		if st.Error != "" {
			msg = fmt.Sprintf("%s (%s)", st.Tool, st.Error)
		}
		failures = append(failures, msg)
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New("tool check failed: " + strings.Join(failures, ", "))
}

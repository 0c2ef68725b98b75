// Package cli wires the cobra command tree for the build tool.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootDir    string
	outputJSON bool
)

// Execute runs the root cobra command.
func Execute(version string) {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "claudebuild",
		Short:   "Build Claude Desktop for Linux from the Windows or Mac installer",
		Version: version,
	}

	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "Path to the project directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newCheckUpdateCmd())
	cmd.AddCommand(newCleanCmd())
	cmd.AddCommand(newCheckCmd())

	return cmd
}

// envDefault reads a CLAUDE_DESKTOP_-prefixed environment variable as a
// flag default.
func envDefault(key, fallback string) string {
	if v := os.Getenv("CLAUDE_DESKTOP_" + key); v != "" {
		return v
	}
	return fallback
}

// envDefaultBool is the boolean variant of envDefault; any non-empty
// value other than "0" and "false" counts as true.
func envDefaultBool(key string, fallback bool) bool {
	v := os.Getenv("CLAUDE_DESKTOP_" + key)
	switch v {
	case "":
		return fallback
	case "0", "false", "no":
		return false
	default:
		return true
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claudebuild/internal/paths"
)

var cleanAll bool

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build artifacts",
		RunE:  runClean,
	}

	cmd.Flags().BoolVar(&cleanAll, "all", false, "Also remove the download cache")

	return cmd
}

func runClean(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(rootDir)
	if err != nil {
		return err
	}

	targets := []string{pp.WorkDir, pp.OutputDir, pp.PackageDir}
	if cleanAll {
		targets = append(targets, pp.CacheDir)
	}

	out := cmd.OutOrStdout()
	for _, dir := range targets {
		exists, err := paths.DirExists(dir)
		if err != nil {
			return fmt.Errorf("stat %s: %w", dir, err)
		}
		if !exists {
			continue
		}
		fmt.Fprintf(out, "Removing %s...\n", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}

	fmt.Fprintln(out, "Cleanup complete")
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"claudebuild/internal/source"
)

var checkUpdateSource string

func newCheckUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-update",
		Short: "Check for new installer versions without downloading",
		RunE:  runCheckUpdate,
	}

	cmd.Flags().StringVarP(&checkUpdateSource, "source", "s", "", "Only check a specific source (windows, macos)")

	return cmd
}

type updateResult struct {
	Available     bool   `json:"update_available"`
	LatestVersion string `json:"latest_version,omitempty"`
	CachedVersion string `json:"cached_version,omitempty"`
	Error         string `json:"error,omitempty"`
}

func runCheckUpdate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := loadEnv("check-update")
	if err != nil {
		return err
	}
	defer env.close()

	names := source.Names()
	if checkUpdateSource != "" {
		names = []string{checkUpdateSource}
	}

	results := make(map[string]updateResult, len(names))
	for _, name := range names {
		results[name] = env.checkUpdateOne(ctx, name)
	}

	if outputJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		res := results[name]
		fmt.Fprintf(out, "%s:\n", name)
		switch {
		case res.Error != "":
			fmt.Fprintf(out, "  Error: %s\n", res.Error)
		case res.Available:
			fmt.Fprintln(out, "  Update available")
			if res.LatestVersion != "" {
				fmt.Fprintf(out, "  Latest version: %s\n", res.LatestVersion)
			}
			if res.CachedVersion != "" {
				fmt.Fprintf(out, "  Cached version: %s\n", res.CachedVersion)
			}
		default:
			fmt.Fprintln(out, "  Up to date")
			if res.CachedVersion != "" {
				fmt.Fprintf(out, "  Cached version: %s\n", res.CachedVersion)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}

func (e *cmdEnv) checkUpdateOne(ctx context.Context, name string) updateResult {
	handler, err := e.handler(name)
	if err != nil {
		return updateResult{Error: err.Error()}
	}
	check, err := handler.CheckForUpdate(ctx)
	if err != nil {
		return updateResult{Error: err.Error()}
	}
	return updateResult{
		Available:     check.Available,
		LatestVersion: check.NewVersion,
		CachedVersion: check.CachedVersion,
	}
}

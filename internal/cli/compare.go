package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/spf13/cobra"

	"claudebuild/internal/source"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare the Windows and Mac installer versions",
		RunE:  runCompare,
	}
}

type compareResult struct {
	Version  string `json:"version,omitempty"`
	Electron string `json:"electron,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := loadEnv("compare")
	if err != nil {
		return err
	}
	defer env.close()

	results := make(map[string]compareResult, len(source.Names()))
	for _, name := range source.Names() {
		stop := statusLine(cmd.ErrOrStderr(), fmt.Sprintf("Checking %s version...", name))
		results[name] = env.compareOne(ctx, name)
		stop()
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
	fmt.Fprintln(out)
	for _, name := range source.Names() {
		res := results[name]
		fmt.Fprintf(out, "%s version:\n", name)
		if res.Error != "" {
			fmt.Fprintf(out, "  Error: %s\n", res.Error)
		} else {
			fmt.Fprintf(out, "  Version: %s\n", res.Version)
			fmt.Fprintf(out, "  Electron: %s\n", res.Electron)
		}
		fmt.Fprintln(out)
	}

	printRecommendation(cmd, results)
	return nil
}

func (e *cmdEnv) compareOne(ctx context.Context, name string) compareResult {
	handler, err := e.handler(name)
	if err != nil {
		return compareResult{Error: err.Error()}
	}
	if !handler.HasInstaller() {
		if _, err := handler.Download(ctx, false); err != nil {
			return compareResult{Error: err.Error()}
		}
	}
	meta, err := e.resolveMetadata(ctx, handler)
	if err != nil {
		return compareResult{Error: err.Error()}
	}
	return compareResult{Version: meta.Version, Electron: meta.ElectronVersion}
}

func printRecommendation(cmd *cobra.Command, results map[string]compareResult) {
	win, mac := results["windows"], results["macos"]
	if win.Error != "" || mac.Error != "" {
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Recommendation:")
	switch compareVersions(mac.Version, win.Version) {
	case 1:
		fmt.Fprintln(out, "  Use --source macos (newer version)")
	case -1:
		fmt.Fprintln(out, "  Use --source windows (newer version)")
	default:
		fmt.Fprintln(out, "  Both sources have the same version")
		fmt.Fprintln(out, "  Use --source macos for better Claude Code support")
	}
}

// compareVersions orders two release versions, falling back to string
// comparison when either does not parse as semver.
func compareVersions(a, b string) int {
	va, errA := semver.ParseTolerant(a)
	vb, errB := semver.ParseTolerant(b)
	if errA != nil || errB != nil {
		switch {
		case a > b:
			return 1
		case a < b:
			return -1
		default:
			return 0
		}
	}
	return va.Compare(vb)
}

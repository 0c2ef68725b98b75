package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"claudebuild/internal/builder"
	"claudebuild/internal/logx"
	"claudebuild/internal/pkgbuild"
	"claudebuild/internal/run"
	"claudebuild/internal/tui"
)

var (
	buildSource        string
	buildFormat        string
	buildWorkDir       string
	buildOutputDir     string
	buildSkipDeps      bool
	buildNoDownload    bool
	buildForceDownload bool
	buildPatchClaude   bool
	buildNoProgress    bool
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the Linux package from a vendor installer",
		RunE:  runBuild,
	}

	cmd.Flags().StringVarP(&buildSource, "source", "s", envDefault("SOURCE", "windows"), "Source platform to build from (windows, macos)")
	cmd.Flags().StringVar(&buildFormat, "format", envDefault("FORMAT", pkgbuild.FormatDeb), "Package format (deb, rpm)")
	cmd.Flags().StringVar(&buildWorkDir, "work-dir", "", "Working directory for the build")
	cmd.Flags().StringVar(&buildOutputDir, "output-dir", "", "Output directory for the assembled tree")
	cmd.Flags().BoolVar(&buildSkipDeps, "skip-deps", false, "Skip the external command check")
	cmd.Flags().BoolVar(&buildNoDownload, "no-download", false, "Fail instead of downloading a missing installer")
	cmd.Flags().BoolVar(&buildForceDownload, "force-download", false, "Re-download the installer even if cached")
	cmd.Flags().BoolVar(&buildPatchClaude, "patch-claude-code-platforms", envDefaultBool("PATCH_CLAUDE_CODE_PLATFORMS", false), "Enable Linux platform support in Claude Code mode")
	cmd.Flags().BoolVar(&buildNoProgress, "no-progress", false, "Disable interactive progress output")

	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := loadEnv("build")
	if err != nil {
		return err
	}
	defer env.close()

	if buildWorkDir != "" {
		env.paths.WorkDir = buildWorkDir
	}
	if buildOutputDir != "" {
		env.paths.OutputDir = buildOutputDir
	}

	handler, err := env.handler(buildSource)
	if err != nil {
		return err
	}

	b := &builder.Builder{
		Config:  env.cfg,
		Paths:   env.paths,
		Runner:  run.CmdRunner{},
		Handler: handler,
		Logger:  env.logger,
		Options: builder.Options{
			Format:                   buildFormat,
			Download:                 !buildNoDownload,
			ForceDownload:            buildForceDownload,
			SkipDeps:                 buildSkipDeps,
			PatchClaudeCodePlatforms: buildPatchClaude,
		},
	}

	mode := tui.DetectMode(cmd.ErrOrStderr(), buildNoProgress, false)

	var artifact string
	if mode == tui.ModeTUI {
		artifact, err = runBuildTUI(ctx, cmd.ErrOrStderr(), b)
	} else {
		b.Logger = logx.Tee(env.logger, cmd.ErrOrStderr())
		b.Reporter = plainReporter{out: cmd.ErrOrStderr()}
		artifact, err = b.Run(ctx)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Package built: %s\n", artifact)
	fmt.Fprintln(out, "Install with:")
	if strings.HasSuffix(artifact, ".deb") {
		fmt.Fprintf(out, "  sudo dpkg -i %s\n", artifact)
	} else {
		fmt.Fprintf(out, "  sudo rpm -i %s\n", artifact)
	}
	return nil
}

func runBuildTUI(ctx context.Context, out io.Writer, b *builder.Builder) (string, error) {
	stages := builder.PipelineStages()
	keys := make([]string, len(stages))
	labels := make([]string, len(stages))
	for i, s := range stages {
		keys[i] = s.String()
		labels[i] = s.String()
	}

	model := tui.NewStageModel(fmt.Sprintf("Building from %s source", b.Handler.Name()), keys, labels)

	var artifact string
	var buildErr error
	err := tui.RunWithWork(out, model, func(send func(tea.Msg)) {
		b.Reporter = tui.NewStageReporter(send)
		artifact, buildErr = b.Run(ctx)
		if buildErr != nil {
			send(tui.ErrorMsg{Err: buildErr})
		}
	})
	if buildErr != nil {
		return "", buildErr
	}
	return artifact, err
}

// plainReporter writes stage transitions as log lines when no TTY is
// available.
type plainReporter struct {
	out io.Writer
}

func (r plainReporter) StageStarted(s builder.Stage) {
	fmt.Fprintf(r.out, "==> %s\n", s)
}

func (r plainReporter) StageFinished(s builder.Stage, err error) {
	if err != nil {
		fmt.Fprintf(r.out, "    %s failed: %v\n", s, err)
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	downloadSource string
	downloadForce  bool
	downloadOutput string
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the vendor installer into the cache",
		RunE:  runDownload,
	}

	cmd.Flags().StringVarP(&downloadSource, "source", "s", envDefault("SOURCE", "windows"), "Source platform to download (windows, macos)")
	cmd.Flags().BoolVar(&downloadForce, "force", false, "Re-download even if a cached copy exists")
	cmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Copy the installer to this path after downloading")

	return cmd
}

func runDownload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := loadEnv("download")
	if err != nil {
		return err
	}
	defer env.close()

	handler, err := env.handler(downloadSource)
	if err != nil {
		return err
	}

	stop := statusLine(cmd.ErrOrStderr(), fmt.Sprintf("Downloading %s installer...", handler.Name()))
	installerPath, err := handler.Download(ctx, downloadForce)
	stop()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if downloadOutput != "" {
		if err := copyFileTo(installerPath, downloadOutput); err != nil {
			return err
		}
		fmt.Fprintf(out, "Installer saved to: %s\n", downloadOutput)
	} else {
		fmt.Fprintf(out, "Installer cached at: %s\n", installerPath)
	}
	return nil
}

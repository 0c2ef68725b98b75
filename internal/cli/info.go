package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	infoSource string
	infoForce  bool
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show version information for the latest installer",
		RunE:  runInfo,
	}

	cmd.Flags().StringVarP(&infoSource, "source", "s", envDefault("SOURCE", "windows"), "Source platform (windows, macos)")
	cmd.Flags().BoolVar(&infoForce, "force", false, "Re-download the installer before inspecting it")

	return cmd
}

func runInfo(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := loadEnv("info")
	if err != nil {
		return err
	}
	defer env.close()

	handler, err := env.handler(infoSource)
	if err != nil {
		return err
	}

	if !handler.HasInstaller() || infoForce {
		stop := statusLine(cmd.ErrOrStderr(), fmt.Sprintf("Downloading %s installer...", handler.Name()))
		_, err := handler.Download(ctx, infoForce)
		stop()
		if err != nil {
			return err
		}
	}

	stop := statusLine(cmd.ErrOrStderr(), "Reading installer metadata...")
	meta, err := env.resolveMetadata(ctx, handler)
	stop()
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source: %s\n", meta.Source)
	fmt.Fprintf(out, "Claude Desktop Version: %s\n", meta.Version)
	fmt.Fprintf(out, "Electron Version: %s\n", meta.ElectronVersion)
	fmt.Fprintf(out, "Application Name: %s\n", meta.AppName)
	if meta.BundleID != "" {
		fmt.Fprintf(out, "Bundle ID: %s\n", meta.BundleID)
	}
	if meta.NodeRequirement != "" {
		fmt.Fprintf(out, "Node Requirement: %s\n", meta.NodeRequirement)
	}
	return nil
}

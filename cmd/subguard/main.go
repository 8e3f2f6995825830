package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/subguard/internal/app"
	"github.com/MrSnakeDoc/subguard/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	rootCmd := &cobra.Command{
		Use:   "subguard",
		Short: "Subscription guardian - detect, score and remind",
		Long: `subguard spots subscription and free-trial offers in web pages, scores
how aggressive their terms are, tracks the commitments you accept and
reminds you before they renew.

Without a subcommand it runs the server, like "subguard serve".`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		serve,
		newScanCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		Long:  "Configuration is read from SUBGUARD_* environment variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.New().Run(); err != nil {
				return fmt.Errorf("❌ subguard failed to start: %w", err)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]string{
					"version":    version.Version,
					"commit":     version.Commit,
					"build_date": version.BuildDate,
					"go_version": version.GoVersion,
				})
			}
			_, err := fmt.Fprintln(out, version.String())
			return err
		},
	}
}

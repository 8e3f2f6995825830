package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/subguard/internal/detect"
	"github.com/MrSnakeDoc/subguard/internal/dom"
	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/rules"
	"github.com/MrSnakeDoc/subguard/internal/utils"
)

type scanResult struct {
	URL      string           `json:"url"`
	Controls []detect.Control `json:"controls"`
}

type detectResult struct {
	domain.DetectionMessage
	Level string `json:"risk_level"`
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Classify a saved page offline",
		Long: `Lists the commitment controls of an HTML page. With --path, simulates a
click on that control and prints the detection instead.

  subguard scan --file plans.html --url https://www.netflix.com/plans
  subguard scan --file plans.html --url https://www.netflix.com/plans --path 1/2/1/5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			pageURL, _ := cmd.Flags().GetString("url")
			path, _ := cmd.Flags().GetString("path")
			rulesFile, _ := cmd.Flags().GetString("rules")

			engine, err := rules.NewLoader(rulesFile).Engine()
			if err != nil {
				return err
			}

			root, err := readPage(cmd, file)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if strings.TrimSpace(path) == "" {
				return enc.Encode(scanResult{URL: pageURL, Controls: engine.Controls(root, pageURL)})
			}

			msg, err := engine.DetectAt(root, pageURL, path)
			if err != nil {
				return fmt.Errorf("path %s: %w", path, err)
			}
			return enc.Encode(detectResult{
				DetectionMessage: msg,
				Level:            detect.Classify(msg.RiskScore).Label(),
			})
		},
	}

	cmd.Flags().String("file", "-", "HTML file to read, - for stdin")
	cmd.Flags().String("url", "", "Address the page was saved from")
	cmd.Flags().String("path", "", "Tree path of the control to activate (from a previous scan)")
	cmd.Flags().String("rules", os.Getenv("SUBGUARD_RULES_FILE"), "YAML rules file layered over the built-in rules")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func readPage(cmd *cobra.Command, file string) (*dom.Node, error) {
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		defer utils.Close(f)
		r = f
	}
	return dom.Parse(r)
}

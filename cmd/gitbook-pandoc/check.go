// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gitbook-pandoc/internal/check"
	"github.com/pdiddy/gitbook-pandoc/internal/index"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report missing documents, images, and links in a GitBook tree",
	Long: `Check reads summary.md from the source directory and inspects every
document it lists without converting anything. Documents that do not exist
and local image or link targets that point nowhere are reported one per
line. The command fails when any problem is found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Source == "" {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return fmt.Errorf("--source is required")
	}

	idx, err := index.Load(cfg.Source, cfg)
	if err != nil {
		return err
	}
	report, err := check.New(cfg.Source).Check(idx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("%d problem(s) found in %s", len(report.Problems), cfg.Source)
	}
	return nil
}

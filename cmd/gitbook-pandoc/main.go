// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gitbook-pandoc CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gitbook-pandoc/internal/book"
	"github.com/pdiddy/gitbook-pandoc/internal/hack"
	"github.com/pdiddy/gitbook-pandoc/internal/pandoc"
	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// errMissingFlags is returned when --source or --dest is not configured.
var errMissingFlags = errors.New("both --source and --dest are required")

// converter is what the CLI needs from pandoc.
type converter interface {
	pandoc.Converter
	Available() error
	Version() (string, error)
}

// newConverter is replaced in tests.
var newConverter = func(bin string) converter {
	return pandoc.New(bin)
}

// rootCmd converts a GitBook tree into LaTeX.
var rootCmd = &cobra.Command{
	Use:   "gitbook-pandoc",
	Short: "Convert a GitBook tree into a LaTeX book with pandoc",
	Long: `gitbook-pandoc copies a GitBook source tree into a destination directory,
reads the book order from summary.md, converts every listed Markdown file to
LaTeX with pandoc, and writes body.tex, a master file that pulls the chapters
in with \subimport. The shared preamble pandoc would emit for the whole book
is written to pandoc.inc.tex.

Links in summary.md whose target mentions "readme" are chapters; all other
documents are subchapters and have their headings shifted one level
down.`,
	Example: `  gitbook-pandoc --source ./book --dest ./out --prefix tex
  gitbook-pandoc -s ./book -d ./out -r replacements.yaml --on-conversion-failure fail`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./gitbook-pandoc.yaml or ~/.config/gitbook-pandoc/gitbook-pandoc.yaml)")
	addSharedFlags(rootCmd.PersistentFlags())
	addConvertFlags(rootCmd.Flags())

	setDefaults(viper.GetViper(), types.DefaultConfig())
	bindFlags(viper.GetViper(), rootCmd.PersistentFlags())
	bindFlags(viper.GetViper(), rootCmd.Flags())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gitbook-pandoc")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gitbook-pandoc"))
		}
	}

	viper.SetEnvPrefix("GITBOOK_PANDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	conv := newConverter(cfg.PandocPath)
	if err := conv.Available(); err != nil {
		return err
	}

	if cfg.Source == "" || cfg.Dest == "" {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return errMissingFlags
	}

	var rules []hack.Rule
	if cfg.ReplaceFrom != "" {
		rules, err = hack.LoadRulesFile(cfg.ReplaceFrom)
		if err != nil {
			return err
		}
	}

	result, err := book.Run(cmd.Context(), cfg, book.Options{
		Converter: conv,
		Rules:     rules,
		Out:       cmd.OutOrStdout(),
		Err:       cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if result.HasFailures() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d document(s) failed conversion and were left out of %s\n",
			result.Failed, cfg.HeaderFilename)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

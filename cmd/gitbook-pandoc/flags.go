// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"source":                "source",
	"dest":                  "dest",
	"prefix":                "prefix",
	"replace-from":          "replace_from",
	"pandoc":                "pandoc",
	"on-conversion-failure": "on_conversion_failure",
	"ledger":                "ledger",
	"report":                "report",
}

// addSharedFlags registers the flags every subcommand reads.
func addSharedFlags(fs *flag.FlagSet) {
	def := types.DefaultConfig()
	fs.StringP("source", "s", "", "GitBook source directory")
	fs.String("pandoc", def.PandocPath, "pandoc executable")
	fs.String("ledger", "", "SQLite run ledger (disabled when empty)")
}

// addConvertFlags registers the flags of the conversion itself.
func addConvertFlags(fs *flag.FlagSet) {
	def := types.DefaultConfig()
	fs.StringP("dest", "d", "", "destination directory")
	fs.StringP("prefix", "p", "", "subdirectory of dest that receives the book")
	fs.StringP("replace-from", "r", "", "batch replacement rules, plain text or .yaml")
	fs.String("on-conversion-failure", string(def.OnConversionFailure),
		fmt.Sprintf("what to do when pandoc fails on a document: %s or %s", types.FailureWarn, types.FailureAbort))
	fs.String("report", "", "write a YAML run report to this file")
}

// bindFlags binds the known flags of fs to their configuration keys so that
// a flag given on the command line overrides the config file and the
// environment.
func bindFlags(v *viper.Viper, fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.BindPFlag(key, f)
		}
	})
}

// setDefaults registers every configuration key so that file and
// environment values reach loadConfig.
func setDefaults(v *viper.Viper, cfg types.Config) {
	v.SetDefault("source", cfg.Source)
	v.SetDefault("dest", cfg.Dest)
	v.SetDefault("prefix", cfg.Prefix)
	v.SetDefault("replace_from", cfg.ReplaceFrom)
	v.SetDefault("pandoc", cfg.PandocPath)
	v.SetDefault("summary_filename", cfg.SummaryFilename)
	v.SetDefault("chapter_marker", cfg.ChapterMarker)
	v.SetDefault("header_filename", cfg.HeaderFilename)
	v.SetDefault("big_markdown", cfg.BigMarkdownFilename)
	v.SetDefault("big_latex", cfg.BigLatexFilename)
	v.SetDefault("include_filename", cfg.IncludeFilename)
	v.SetDefault("target_ext", cfg.TargetExt)
	v.SetDefault("on_conversion_failure", string(cfg.OnConversionFailure))
	v.SetDefault("ledger", cfg.Ledger)
	v.SetDefault("report", cfg.Report)
}

// loadConfig resolves the run configuration from v on top of the defaults.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if !cfg.OnConversionFailure.Valid() {
		return cfg, fmt.Errorf("invalid --on-conversion-failure %q: use %s or %s",
			cfg.OnConversionFailure, types.FailureWarn, types.FailureAbort)
	}
	return cfg, nil
}

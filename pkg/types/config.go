// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"path/filepath"
)

// FailurePolicy decides what happens when pandoc exits non-zero for a
// single document.
type FailurePolicy string

const (
	// FailureWarn reports the failed document and continues the run.
	FailureWarn FailurePolicy = "warn"
	// FailureAbort stops the run at the first failed document.
	FailureAbort FailurePolicy = "fail"
)

// Valid reports whether p is a known policy.
func (p FailurePolicy) Valid() bool {
	return p == FailureWarn || p == FailureAbort
}

// Config holds the settings for one book conversion. Fields that were fixed
// file names in earlier versions of the tool keep their old values as
// defaults; see DefaultConfig.
type Config struct {
	// Source is the root of the GitBook tree.
	Source string `json:"source" yaml:"source" mapstructure:"source"`

	// Dest is the root of the output tree.
	Dest string `json:"dest" yaml:"dest" mapstructure:"dest"`

	// Prefix is the subdirectory of Dest that receives the copied tree and
	// the converted files. It is also the \subimport directory.
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`

	// ReplaceFrom is an optional batch-replacement rule file.
	ReplaceFrom string `json:"replace_from,omitempty" yaml:"replace_from,omitempty" mapstructure:"replace_from"`

	// PandocPath is the converter binary (default "pandoc").
	PandocPath string `json:"pandoc" yaml:"pandoc" mapstructure:"pandoc"`

	// SummaryFilename is matched case-insensitively in the output root.
	SummaryFilename string `json:"summary_filename" yaml:"summary_filename" mapstructure:"summary_filename"`

	// ChapterMarker classifies a summary link as a chapter when the link
	// contains it, ignoring case (default "readme").
	ChapterMarker string `json:"chapter_marker" yaml:"chapter_marker" mapstructure:"chapter_marker"`

	// HeaderFilename is the generated master include file (default "body.tex").
	HeaderFilename string `json:"header_filename" yaml:"header_filename" mapstructure:"header_filename"`

	// BigMarkdownFilename and BigLatexFilename hold the concatenated sources
	// and their standalone conversion, used to extract the preamble.
	BigMarkdownFilename string `json:"big_markdown" yaml:"big_markdown" mapstructure:"big_markdown"`
	BigLatexFilename    string `json:"big_latex" yaml:"big_latex" mapstructure:"big_latex"`

	// IncludeFilename receives the extracted preamble (default "pandoc.inc.tex").
	IncludeFilename string `json:"include_filename" yaml:"include_filename" mapstructure:"include_filename"`

	// TargetExt is the extension of converted files, dot included.
	TargetExt string `json:"target_ext" yaml:"target_ext" mapstructure:"target_ext"`

	// OnConversionFailure selects the per-document failure policy.
	OnConversionFailure FailurePolicy `json:"on_conversion_failure" yaml:"on_conversion_failure" mapstructure:"on_conversion_failure"`

	// Ledger is an optional SQLite run history database.
	Ledger string `json:"ledger,omitempty" yaml:"ledger,omitempty" mapstructure:"ledger"`

	// Report is an optional YAML run report path.
	Report string `json:"report,omitempty" yaml:"report,omitempty" mapstructure:"report"`
}

// DefaultConfig returns a Config with every optional field at its default.
func DefaultConfig() Config {
	return Config{
		PandocPath:          "pandoc",
		SummaryFilename:     "summary.md",
		ChapterMarker:       "readme",
		HeaderFilename:      "body.tex",
		BigMarkdownFilename: "all.temp.md",
		BigLatexFilename:    "all.temp.tex",
		IncludeFilename:     "pandoc.inc.tex",
		TargetExt:           ".tex",
		OnConversionFailure: FailureWarn,
	}
}

// OutputRoot returns Dest joined with Prefix: the directory the source tree
// is copied into and every generated file is written to.
func (c Config) OutputRoot() string {
	return filepath.Join(c.Dest, c.Prefix)
}

// Validate checks the required fields and the failure policy.
func (c Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source directory is required")
	}
	if c.Dest == "" {
		return fmt.Errorf("destination directory is required")
	}
	if !c.OnConversionFailure.Valid() {
		return fmt.Errorf("invalid conversion failure policy %q: use %s or %s",
			c.OnConversionFailure, FailureWarn, FailureAbort)
	}
	return nil
}

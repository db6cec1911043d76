// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

func newTestViper(t *testing.T) (*viper.Viper, *flag.FlagSet) {
	t.Helper()
	v := viper.New()
	setDefaults(v, types.DefaultConfig())
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	addSharedFlags(fs)
	addConvertFlags(fs)
	bindFlags(v, fs)
	return v, fs
}

func TestLoadConfigDefaults(t *testing.T) {
	v, _ := newTestViper(t)
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	v, fs := newTestViper(t)
	path := filepath.Join(t.TempDir(), "gitbook-pandoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"source: from-file\ndest: out\nchapter_marker: intro\non_conversion_failure: fail\n"), 0o644))
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	require.NoError(t, fs.Parse([]string{"--source", "from-flag", "-p", "tex", "-r", "rules.yaml"}))

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Source)
	assert.Equal(t, "out", cfg.Dest)
	assert.Equal(t, "tex", cfg.Prefix)
	assert.Equal(t, "rules.yaml", cfg.ReplaceFrom)
	assert.Equal(t, "intro", cfg.ChapterMarker)
	assert.Equal(t, types.FailureAbort, cfg.OnConversionFailure)
	assert.Equal(t, "pandoc", cfg.PandocPath)
	assert.Equal(t, "summary.md", cfg.SummaryFilename)
}

func TestLoadConfigEnvironment(t *testing.T) {
	v, _ := newTestViper(t)
	v.SetEnvPrefix("GITBOOK_PANDOC")
	v.AutomaticEnv()
	t.Setenv("GITBOOK_PANDOC_SUMMARY_FILENAME", "book.md")
	t.Setenv("GITBOOK_PANDOC_PANDOC", "/opt/pandoc/bin/pandoc")

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "book.md", cfg.SummaryFilename)
	assert.Equal(t, "/opt/pandoc/bin/pandoc", cfg.PandocPath)
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	v, fs := newTestViper(t)
	require.NoError(t, fs.Parse([]string{"--on-conversion-failure", "explode"}))
	_, err := loadConfig(v)
	assert.ErrorContains(t, err, `invalid --on-conversion-failure "explode"`)
}

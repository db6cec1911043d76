// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package book

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gitbook-pandoc/internal/hack"
	"github.com/pdiddy/gitbook-pandoc/internal/index"
	"github.com/pdiddy/gitbook-pandoc/internal/ledger"
	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// copyConverter stands in for pandoc by copying input to output verbatim.
type copyConverter struct{}

func (copyConverter) Convert(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

func (c copyConverter) Standalone(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, append([]byte("\\documentclass{book}\n\\usepackage{hyperref}\n\\begin{document}\n"), data...), 0o644)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func newConfig(t *testing.T, source string) types.Config {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Source = source
	cfg.Dest = t.TempDir()
	return cfg
}

func run(t *testing.T, cfg types.Config, rules ...hack.Rule) (types.Result, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	result, err := Run(context.Background(), cfg, Options{
		Converter: copyConverter{},
		Rules:     rules,
		Out:       &out,
		Err:       &errOut,
	})
	return result, errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunTwoDocumentBook(t *testing.T) {
	src := writeTree(t, map[string]string{
		"SUMMARY.md": "# Summary\n\n* [Intro](readme.md)\n* [Part](part.md)\n",
		"readme.md":  "\\section{Intro}\n",
		"part.md":    "\\section{Part}\n\\subsection{Details}\n",
	})
	cfg := newConfig(t, src)
	cfg.Prefix = "tex"

	result, _, err := run(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converted)

	root := cfg.OutputRoot()
	assert.Equal(t,
		"\\graphicspath{{./}}\n\\subimport{tex/}{readme}\n\\subimport{tex/}{part}\n",
		readFile(t, filepath.Join(root, "body.tex")))

	assert.Equal(t, "\\chapter{Intro}\n", readFile(t, filepath.Join(root, "readme.tex")))
	assert.Equal(t, "\\section{Part}\n\\subsection{Details}\n", readFile(t, filepath.Join(root, "part.tex")),
		"subchapter headings are shifted one level down after promotion")

	assert.Equal(t, "\\usepackage{hyperref}\n", readFile(t, filepath.Join(root, "pandoc.inc.tex")))
	assert.FileExists(t, filepath.Join(root, "all.temp.md"))
	assert.FileExists(t, filepath.Join(src, "readme.md"), "source tree is untouched")
	assert.Equal(t, "\\section{Intro}\n", readFile(t, filepath.Join(src, "readme.md")))
}

func TestRunMissingDocumentIsSkipped(t *testing.T) {
	src := writeTree(t, map[string]string{
		"summary.md":  "* [A](a/README.md)\n* [B](a/b.md)\n* [C](a/c.md)\n",
		"a/README.md": "A",
		"a/c.md":      "C",
	})
	cfg := newConfig(t, src)

	result, warnings, err := run(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converted)
	assert.Equal(t, 1, result.Skipped)
	assert.Contains(t, warnings, "b.md not found")

	assert.Equal(t,
		"\\graphicspath{{a/}}\n\\subimport{./}{a/README}\n\\subimport{./}{a/c}\n",
		readFile(t, filepath.Join(cfg.OutputRoot(), "body.tex")))
}

func TestRunConvertsDecomposedFileName(t *testing.T) {
	name := "cafe\u0301.md"
	src := writeTree(t, map[string]string{
		"summary.md": "* [Intro](README.md)\n* [Caf\u00e9](" + name + ")\n",
		"README.md":  "Intro",
		name:         "Coffee",
	})
	cfg := newConfig(t, src)

	result, warnings, err := run(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converted)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, warnings)

	assert.Equal(t, "Coffee", readFile(t, filepath.Join(cfg.OutputRoot(), "cafe\u0301.tex")))
	assert.Equal(t,
		"\\graphicspath{{./}}\n\\subimport{./}{README}\n\\subimport{./}{cafe\u0301}\n",
		readFile(t, filepath.Join(cfg.OutputRoot(), "body.tex")))
}

func TestRunAppliesReplacementRules(t *testing.T) {
	src := writeTree(t, map[string]string{
		"summary.md": "* [A](a.md)\n* [B](b.md)\n",
		"a.md":       "colour",
		"b.md":       "colour",
	})
	cfg := newConfig(t, src)
	rule, err := hack.NewRule(`.*/a\.md`, "colou?r", "color", false)
	require.NoError(t, err)

	_, _, err = run(t, cfg, rule)
	require.NoError(t, err)
	assert.Equal(t, "color", readFile(t, filepath.Join(cfg.OutputRoot(), "a.tex")))
	assert.Equal(t, "colour", readFile(t, filepath.Join(cfg.OutputRoot(), "b.tex")))
}

func TestRunErrors(t *testing.T) {
	t.Run("missing summary", func(t *testing.T) {
		cfg := newConfig(t, writeTree(t, map[string]string{"a.md": "A"}))
		_, _, err := run(t, cfg)
		require.ErrorIs(t, err, index.ErrNoSummary)
		assert.Contains(t, err.Error(), "summary.md")
	})

	t.Run("copy failure names both directories", func(t *testing.T) {
		cfg := newConfig(t, filepath.Join(t.TempDir(), "missing"))
		_, _, err := run(t, cfg)
		var copyErr *CopyError
		require.True(t, errors.As(err, &copyErr))
		assert.Equal(t, cfg.Source, copyErr.Src)
		assert.Equal(t, cfg.OutputRoot(), copyErr.Dst)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := types.DefaultConfig()
		_, _, err := run(t, cfg)
		assert.ErrorContains(t, err, "source directory is required")
	})
}

func TestRunWritesLedgerAndReport(t *testing.T) {
	src := writeTree(t, map[string]string{
		"summary.md": "* [Intro](README.md)\n* [Gone](gone.md)\n",
		"README.md":  "# Intro",
	})
	cfg := newConfig(t, src)
	state := t.TempDir()
	cfg.Ledger = filepath.Join(state, "ledger.db")
	cfg.Report = filepath.Join(state, "report.yaml")

	clock := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	var out, errOut bytes.Buffer
	_, err := Run(context.Background(), cfg, Options{
		Converter: copyConverter{},
		Out:       &out,
		Err:       &errOut,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	require.NoError(t, err)

	report, err := ReadReport(cfg.Report)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Converted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, "1s", report.Duration)
	require.Len(t, report.Documents, 2)
	assert.Equal(t, types.Chapter, report.Documents[0].Depth)
	assert.Equal(t, types.DocSkipped, report.Documents[1].Status)

	store, err := ledger.Open(cfg.Ledger)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Converted)
	assert.False(t, runs[0].FinishedAt.IsZero())

	docs, err := store.Documents(context.Background(), runs[0].ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, types.DocConverted, docs[0].Status)
	assert.Equal(t, types.DocSkipped, docs[1].Status)
}

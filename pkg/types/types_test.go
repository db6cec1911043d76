// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestIndexAddKeepsFirstOccurrence(t *testing.T) {
	var idx Index
	assert.True(t, idx.Add(Entry{Path: "/b/readme.md", Depth: Chapter}))
	assert.True(t, idx.Add(Entry{Path: "/b/a.md", Depth: Subchapter}))
	assert.False(t, idx.Add(Entry{Path: "/b/a.md", Depth: Chapter}))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, Subchapter, idx.Entries[1].Depth)
	assert.True(t, idx.Contains("/b/a.md"))
	assert.False(t, idx.Contains("/b/c.md"))
}

func TestIndexComparesNormalizedPaths(t *testing.T) {
	var idx Index
	decomposed, precomposed := "/b/cafe\u0301.md", "/b/caf\u00e9.md"
	assert.True(t, idx.Add(Entry{Path: decomposed}))
	assert.False(t, idx.Add(Entry{Path: precomposed}))
	assert.True(t, idx.Contains(precomposed))
	assert.Equal(t, decomposed, idx.Entries[0].Path)
}

func TestDepthText(t *testing.T) {
	data, err := yaml.Marshal(Entry{Path: "a.md", Depth: Subchapter})
	require.NoError(t, err)
	assert.Equal(t, "path: a.md\ndepth: subchapter\n", string(data))

	var e Entry
	require.NoError(t, yaml.Unmarshal([]byte("path: r.md\ndepth: chapter\n"), &e))
	assert.Equal(t, Chapter, e.Depth)

	assert.Error(t, yaml.Unmarshal([]byte("depth: part\n"), &e))
	assert.Equal(t, "unknown", Depth(7).String())
}

func TestResultCounters(t *testing.T) {
	r := Result{
		Converted: 2,
		Skipped:   1,
		Outcomes: []DocOutcome{
			{Entry: Entry{Path: "a.md"}, Status: DocConverted},
			{Entry: Entry{Path: "b.md"}, Status: DocSkipped},
			{Entry: Entry{Path: "c.md"}, Status: DocConverted},
		},
	}
	assert.Equal(t, 3, r.Total())
	assert.False(t, r.HasFailures())
	assert.Equal(t, []Entry{{Path: "a.md"}, {Path: "c.md"}}, r.ConvertedEntries())

	r.Failed = 1
	assert.True(t, r.HasFailures())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no source", func(c *Config) { c.Source = "" }, "source directory is required"},
		{"no dest", func(c *Config) { c.Dest = "" }, "destination directory is required"},
		{"bad policy", func(c *Config) { c.OnConversionFailure = "retry" }, `invalid conversion failure policy "retry"`},
		{"abort policy", func(c *Config) { c.OnConversionFailure = FailureAbort }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Source, cfg.Dest = "book", "out"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOutputRoot(t *testing.T) {
	cfg := Config{Dest: "out"}
	assert.Equal(t, "out", cfg.OutputRoot())
	cfg.Prefix = "tex"
	assert.Equal(t, filepath.Join("out", "tex"), cfg.OutputRoot())
}

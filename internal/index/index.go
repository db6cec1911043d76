// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the ordered list of book documents from a GitBook
// summary file.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// ErrNoSummary is returned when the summary file is absent from the book root.
var ErrNoSummary = errors.New("summary file not found")

// linkTarget captures the contents of a parenthesised group. The match is
// non-greedy and never spans lines.
var linkTarget = regexp.MustCompile(`\((.*?)\)`)

var fold = cases.Fold()

// Parse scans summary for parenthesised link targets and returns them as an
// index rooted at root. Fragments are stripped, the first occurrence of a
// path wins, and an entry is a chapter when its raw match contains marker,
// ignoring case. Empty targets and absolute URLs are skipped.
func Parse(root, summary, marker string) types.Index {
	var idx types.Index
	foldedMarker := fold.String(marker)
	for _, m := range linkTarget.FindAllStringSubmatch(summary, -1) {
		target := m[1]
		if i := strings.IndexByte(target, '#'); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" || strings.Contains(target, "://") {
			continue
		}

		depth := types.Subchapter
		if foldedMarker != "" && strings.Contains(fold.String(m[0]), foldedMarker) {
			depth = types.Chapter
		}
		idx.Add(types.Entry{
			Path:  filepath.Join(root, filepath.FromSlash(target)),
			Depth: depth,
		})
	}
	return idx
}

// FindSummary returns the path of the file in dir whose name equals name,
// ignoring case.
func FindSummary(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: the file %s cannot be found in %s", ErrNoSummary, name, dir)
}

// Load finds the summary in root and parses it.
func Load(root string, cfg types.Config) (types.Index, error) {
	path, err := FindSummary(root, cfg.SummaryFilename)
	if err != nil {
		return types.Index{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Index{}, fmt.Errorf("reading summary: %w", err)
	}
	return Parse(root, string(data), cfg.ChapterMarker), nil
}

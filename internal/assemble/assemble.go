// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble writes the master include file that stitches the
// converted documents into one book.
package assemble

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/gitbook-pandoc/internal/hack"
	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// Book is the content of the master include file.
type Book struct {
	// GraphicsPath lists image search folders, relative to the output root.
	GraphicsPath []string
	// Includes lists the converted documents, relative to the output root
	// and without extension, in index order.
	Includes []string
	// ImportDir is the \subimport directory, with a trailing slash.
	ImportDir string
}

// Render formats the master include file.
func (b Book) Render() string {
	var s strings.Builder
	s.WriteString(`\graphicspath{`)
	for _, g := range b.GraphicsPath {
		fmt.Fprintf(&s, "{%s}", g)
	}
	s.WriteString("}\n")
	for _, inc := range b.Includes {
		fmt.Fprintf(&s, "\\subimport{%s}{%s}\n", b.ImportDir, inc)
	}
	return s.String()
}

// Plan builds the Book for the converted outcomes of a run. Outcomes that
// are not converted are left out.
func Plan(cfg types.Config, outcomes []types.DocOutcome) (Book, error) {
	root := cfg.OutputRoot()
	b := Book{ImportDir: importDir(cfg.Prefix)}
	seen := make(map[string]bool)
	for _, o := range outcomes {
		if o.Status != types.DocConverted {
			continue
		}
		rel, err := filepath.Rel(root, o.Output)
		if err != nil {
			return Book{}, fmt.Errorf("locating %s under %s: %w", o.Output, root, err)
		}
		rel = filepath.ToSlash(rel)
		b.Includes = append(b.Includes, strings.TrimSuffix(rel, path.Ext(rel)))

		if o.Depth != types.Chapter {
			continue
		}
		dir := path.Dir(rel) + "/"
		if !seen[dir] {
			seen[dir] = true
			b.GraphicsPath = append(b.GraphicsPath, dir)
		}
	}
	return b, nil
}

func importDir(prefix string) string {
	p := strings.Trim(filepath.ToSlash(prefix), "/")
	if p == "" {
		return "./"
	}
	return p + "/"
}

// ShiftHeadings moves every heading of the file at path one level down.
// \chapter is shifted too, so the promoted H1 of a subchapter becomes a
// \section.
func ShiftHeadings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(hack.DemoteHeadings(string(data))), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Write shifts the headings of converted subchapters and writes the master
// include file. It returns the path written.
func Write(cfg types.Config, outcomes []types.DocOutcome) (string, error) {
	for _, o := range outcomes {
		if o.Status == types.DocConverted && o.Depth == types.Subchapter {
			if err := ShiftHeadings(o.Output); err != nil {
				return "", err
			}
		}
	}

	book, err := Plan(cfg, outcomes)
	if err != nil {
		return "", err
	}
	out := filepath.Join(cfg.OutputRoot(), cfg.HeaderFilename)
	if err := os.WriteFile(out, []byte(book.Render()), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gitbook-pandoc pipeline:
// the book index built from summary.md, per-document outcomes, and the run
// configuration.
package types

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Depth is the nesting level of a document in the book, as derived from the
// summary. Chapters become LaTeX chapters; subchapters are shifted one
// heading level down when the book is assembled.
type Depth int

const (
	Chapter    Depth = 1
	Subchapter Depth = 2
)

// String returns "chapter" or "subchapter".
func (d Depth) String() string {
	switch d {
	case Chapter:
		return "chapter"
	case Subchapter:
		return "subchapter"
	default:
		return "unknown"
	}
}

// MarshalText lets Depth appear by name in YAML run reports.
func (d Depth) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses "chapter" or "subchapter".
func (d *Depth) UnmarshalText(b []byte) error {
	switch string(b) {
	case "chapter":
		*d = Chapter
	case "subchapter":
		*d = Subchapter
	default:
		return fmt.Errorf("unknown depth %q", b)
	}
	return nil
}

// Entry is one document listed in the summary.
type Entry struct {
	// Path is the output-root-joined path of the Markdown source with any
	// fragment stripped.
	Path string `json:"path" yaml:"path"`

	// Depth is Chapter when the summary link mentions the chapter marker
	// (readme by default), Subchapter otherwise.
	Depth Depth `json:"depth" yaml:"depth"`
}

// Index is the ordered list of documents in the book. Entries keep the order
// of their first appearance in the summary; a path is listed at most once.
// Paths are compared in NFC, so precomposed and decomposed spellings of a
// name are one document, while Entries keep the spelling that was added.
type Index struct {
	Entries []Entry
	seen    map[string]struct{}
}

// Add appends an entry unless its path is already indexed. It reports
// whether the entry was added.
func (idx *Index) Add(e Entry) bool {
	if idx.seen == nil {
		idx.seen = make(map[string]struct{})
	}
	key := pathKey(e.Path)
	if _, ok := idx.seen[key]; ok {
		return false
	}
	idx.seen[key] = struct{}{}
	idx.Entries = append(idx.Entries, e)
	return true
}

// Contains reports whether path is indexed.
func (idx *Index) Contains(path string) bool {
	_, ok := idx.seen[pathKey(path)]
	return ok
}

func pathKey(path string) string {
	return norm.NFC.String(path)
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.Entries)
}

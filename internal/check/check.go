// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package check reports problems in a GitBook tree before conversion:
// indexed documents that do not exist and local image or link targets that
// point nowhere.
package check

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/gitbook-pandoc/internal/fsutil"
	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// Kind classifies a problem.
type Kind string

const (
	MissingDocument Kind = "missing document"
	MissingImage    Kind = "missing image"
	MissingLink     Kind = "missing link"
)

// Problem is one broken reference.
type Problem struct {
	Kind Kind
	// Doc is the document path relative to the book root.
	Doc string
	// Target is the reference as written in the document. Empty for
	// missing documents.
	Target string
}

func (p Problem) String() string {
	if p.Target == "" {
		return fmt.Sprintf("%s: %s", p.Kind, p.Doc)
	}
	return fmt.Sprintf("%s: %s -> %s", p.Kind, p.Doc, p.Target)
}

// Report holds the result of a check.
type Report struct {
	Checked  int
	Problems []Problem
}

// OK reports whether no problems were found.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Checker parses Markdown with goldmark.
type Checker struct {
	md   goldmark.Markdown
	root string
}

// New returns a Checker for the book rooted at root.
func New(root string) *Checker {
	return &Checker{md: goldmark.New(), root: root}
}

// Check inspects every indexed document, writing one line per problem to w.
func (c *Checker) Check(idx types.Index, w io.Writer) (Report, error) {
	var report Report
	for _, e := range idx.Entries {
		report.Checked++
		src, err := os.ReadFile(e.Path)
		if err != nil {
			if os.IsNotExist(err) {
				c.add(&report, w, Problem{Kind: MissingDocument, Doc: c.rel(e.Path)})
				continue
			}
			return report, fmt.Errorf("reading %s: %w", e.Path, err)
		}
		for _, p := range c.checkDocument(e.Path, src) {
			c.add(&report, w, p)
		}
	}
	fmt.Fprintf(w, "\nchecked: %d, problems: %d\n", report.Checked, len(report.Problems))
	return report, nil
}

func (c *Checker) add(r *Report, w io.Writer, p Problem) {
	r.Problems = append(r.Problems, p)
	fmt.Fprintln(w, p)
}

// checkDocument walks the goldmark AST of one document.
func (c *Checker) checkDocument(path string, src []byte) []Problem {
	doc := c.md.Parser().Parse(text.NewReader(src))
	dir := filepath.Dir(path)

	var problems []Problem
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var (
			dest []byte
			kind Kind
		)
		switch node := n.(type) {
		case *ast.Image:
			dest, kind = node.Destination, MissingImage
		case *ast.Link:
			dest, kind = node.Destination, MissingLink
		default:
			return ast.WalkContinue, nil
		}
		target := string(dest)
		local, ok := localPath(target)
		if !ok {
			return ast.WalkContinue, nil
		}
		found := exists(filepath.Join(dir, local))
		if kind == MissingImage {
			found = fsutil.FileExists(filepath.Join(dir, local))
		}
		if !found {
			problems = append(problems, Problem{Kind: kind, Doc: c.rel(path), Target: target})
		}
		return ast.WalkContinue, nil
	})
	return problems
}

// localPath turns a link destination into a relative filesystem path. It
// reports false for URLs, pure fragments and absolute paths.
func localPath(dest string) (string, bool) {
	if dest == "" || fsutil.IsURL(dest) || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return "", false
	}
	if i := strings.IndexAny(dest, "#?"); i >= 0 {
		dest = dest[:i]
	}
	if unescaped, err := url.PathUnescape(dest); err == nil {
		dest = unescaped
	}
	return filepath.FromSlash(dest), true
}

// exists accepts directories, which links may point to.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (c *Checker) rel(path string) string {
	if r, err := filepath.Rel(c.root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hack holds the text-rewriting passes applied around each pandoc
// call. Markdown hacks rewrite the source before conversion; text hacks
// rewrite the LaTeX that pandoc produced. Every hack maps a document path
// and its text to new text, and hacks run in order: later hacks see the
// output of earlier ones.
package hack

import "fmt"

// Func rewrites the text of the document at doc. The path identifies the
// document; hacks that need to consult the filesystem derive their inputs
// from it.
type Func func(doc, text string) (string, error)

// Hack is a named rewriting pass.
type Hack struct {
	Name string
	Fn   Func
}

// Pure wraps a rewrite that cannot fail and ignores the document path.
func Pure(name string, fn func(text string) string) Hack {
	return Hack{
		Name: name,
		Fn: func(_, text string) (string, error) {
			return fn(text), nil
		},
	}
}

// Pipeline is an ordered sequence of hacks.
type Pipeline []Hack

// Apply runs every hack in order on text. The first failing hack aborts the
// pipeline; its error names the hack and the document.
func (p Pipeline) Apply(doc, text string) (string, error) {
	for _, h := range p {
		out, err := h.Fn(doc, text)
		if err != nil {
			return text, fmt.Errorf("hack %s on %s: %w", h.Name, doc, err)
		}
		text = out
	}
	return text, nil
}

// Names lists the hack names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, h := range p {
		names[i] = h.Name
	}
	return names
}

// IndexSentinel prefixes \index directives rewritten by IndexMarkers so
// pandoc passes them through untouched. The default text pipeline strips
// it again.
const IndexSentinel = "GPGP"

// DefaultText returns the text hacks every run starts with, for a book whose
// output root is root: title promotion, image flattening, image
// repositioning, inline directives (twice), then index-marker cleanup.
func DefaultText(root string) Pipeline {
	cleanup, _ := NewRule(".*", IndexSentinel+`\index`, `\index`, true)
	return Pipeline{
		PromoteTitles(),
		FlattenImageLinks(),
		RepositionImageLinks(root),
		InlineDirectives(),
		InlineDirectives(),
		BatchReplace("index-cleanup", []Rule{cleanup}),
	}
}

// DefaultMarkdown returns the markdown hacks every run starts with.
func DefaultMarkdown() Pipeline {
	return Pipeline{
		SuperSub(),
		IndexMarkers(),
	}
}

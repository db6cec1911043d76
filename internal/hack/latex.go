// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hack

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// promotable matches \section{, \subsection{ and \subsubsection{, starred
	// forms included. The whole command is one match, so each heading is
	// rewritten at most once per pass.
	promotable = regexp.MustCompile(`\\((?:sub){0,2}section)(\*?)\{`)

	// demotable adds \chapter{ to the promotable set.
	demotable = regexp.MustCompile(`\\(chapter|(?:sub){0,2}section)(\*?)\{`)

	// graphicsOpen matches the opening of an \includegraphics path, with an
	// optional [options] block.
	graphicsOpen = regexp.MustCompile(`\\includegraphics(?:\[[^\]]*\])?\{`)

	// graphicsParent matches an \includegraphics path starting with ../.
	graphicsParent = regexp.MustCompile(`(\\includegraphics(?:\[[^\]]*\])?\{)\.\./`)

	directivePattern = regexp.MustCompile(`<!-- replace (.*?) (with|by) (.*?) -->`)
)

var promotions = map[string]string{
	"section":       "chapter",
	"subsection":    "section",
	"subsubsection": "subsection",
}

var demotions = map[string]string{
	"chapter":       "section",
	"section":       "subsection",
	"subsection":    "subsubsection",
	"subsubsection": "paragraph",
}

// PromoteTitles moves every heading one level up: GitBook chapters are
// written with a level 1 heading, which pandoc emits as \section.
func PromoteTitles() Hack {
	return Pure("promote-titles", func(text string) string {
		return renameHeadings(promotable, promotions, text)
	})
}

// DemoteHeadings moves every heading one level down. It is the inverse of
// PromoteTitles, with \subsubsection falling to \paragraph.
func DemoteHeadings(text string) string {
	return renameHeadings(demotable, demotions, text)
}

func renameHeadings(re *regexp.Regexp, mapping map[string]string, text string) string {
	return re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		return `\` + mapping[sub[1]] + sub[2] + "{"
	})
}

// FlattenImageLinks drops a leading ../ from \includegraphics paths.
func FlattenImageLinks() Hack {
	return Pure("flatten-image-links", func(text string) string {
		return graphicsParent.ReplaceAllString(text, "${1}")
	})
}

// RepositionImageLinks prefixes \includegraphics paths with the directory of
// the document relative to root, so images resolve from the master file.
// Documents directly under root are left alone.
func RepositionImageLinks(root string) Hack {
	return Hack{
		Name: "reposition-image-links",
		Fn: func(doc, text string) (string, error) {
			prefix, err := documentDir(root, doc)
			if err != nil {
				return text, err
			}
			if prefix == "" {
				return text, nil
			}
			return graphicsOpen.ReplaceAllStringFunc(text, func(m string) string {
				return m + prefix + "/"
			}), nil
		},
	}
}

// documentDir returns the slash-separated directory of doc relative to root,
// or "" when doc sits directly in root.
func documentDir(root, doc string) (string, error) {
	rel, err := filepath.Rel(root, filepath.Dir(doc))
	if err != nil {
		return "", fmt.Errorf("locating %s under %s: %w", doc, root, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// InlineDirectives applies the replacements that a Markdown source declares
// for its own converted output, one per line:
//
//	<!-- replace PATTERN with REPLACEMENT -->
//
// ("by" is accepted in place of "with"). PATTERN is a regular expression.
// The directives are read from the .md sibling of the document; a document
// without one is returned unchanged.
func InlineDirectives() Hack {
	return Hack{
		Name: "inline-directives",
		Fn: func(doc, text string) (string, error) {
			directives, err := readDirectives(markdownSibling(doc))
			if err != nil {
				return text, err
			}
			for _, d := range directives {
				re, err := regexp.Compile(d[0])
				if err != nil {
					return text, fmt.Errorf("invalid replace directive %q: %w", d[0], err)
				}
				text = re.ReplaceAllString(text, d[1])
			}
			return text, nil
		},
	}
}

func markdownSibling(doc string) string {
	ext := filepath.Ext(doc)
	if ext == ".md" {
		return doc
	}
	return strings.TrimSuffix(doc, ext) + ".md"
}

// readDirectives returns the (pattern, replacement) pairs declared in the
// Markdown file at path. A missing file yields no directives.
func readDirectives(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directives: %w", err)
	}
	defer f.Close()

	var out [][2]string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "<!-- replace") {
			continue
		}
		if m := directivePattern.FindStringSubmatch(line); m != nil {
			out = append(out, [2]string{m[1], m[3]})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading directives from %s: %w", path, err)
	}
	return out, nil
}

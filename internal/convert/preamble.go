// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	beginDocument = `\begin{document}`
	documentClass = "documentclass"
)

// writePreamble saves the concatenated sources, converts them to a
// standalone document and keeps its header as the shared preamble.
func (d *Driver) writePreamble(big string) error {
	bigMarkdown := filepath.Join(d.root, d.cfg.BigMarkdownFilename)
	bigLatex := filepath.Join(d.root, d.cfg.BigLatexFilename)
	include := filepath.Join(d.root, d.cfg.IncludeFilename)

	if err := writeFile(bigMarkdown, big); err != nil {
		return err
	}
	if err := d.conv.Standalone(bigMarkdown, bigLatex); err != nil {
		fmt.Fprintf(d.errOut, "warning: standalone conversion: %v\n", err)
	}

	f, err := os.Open(bigLatex)
	if err != nil {
		return fmt.Errorf("reading standalone output: %w", err)
	}
	defer f.Close()

	preamble, err := ExtractPreamble(f)
	if err != nil {
		return fmt.Errorf("extracting preamble from %s: %w", bigLatex, err)
	}
	if err := writeFile(include, preamble); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Wrote headers to %s\n", include)
	return nil
}

// ExtractPreamble returns the lines of a standalone LaTeX document that
// precede \begin{document}, leaving out the \documentclass line. Each kept
// line ends with a newline.
func ExtractPreamble(r io.Reader) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, documentClass) {
			continue
		}
		if strings.Contains(line, beginDocument) {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

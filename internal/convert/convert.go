// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives pandoc over every document of a book index,
// running the markdown hacks before each conversion and the text hacks
// after it, and extracts the shared LaTeX preamble.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/gitbook-pandoc/internal/hack"
	"github.com/pdiddy/gitbook-pandoc/internal/pandoc"
	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// ErrConversionFailed is returned under the abort policy when pandoc fails
// on a document.
var ErrConversionFailed = errors.New("conversion failed")

// Recorder receives the outcome of each document, in index order.
type Recorder interface {
	Record(ctx context.Context, seq int, o types.DocOutcome) error
}

// Driver converts the documents of one book. It is not safe for concurrent
// use; documents are processed one at a time.
type Driver struct {
	conv     pandoc.Converter
	cfg      types.Config
	root     string
	markdown hack.Pipeline
	text     hack.Pipeline
	out      io.Writer
	errOut   io.Writer
	rec      Recorder
}

// NewDriver returns a Driver for the book at cfg.OutputRoot() with the
// default markdown and text hacks installed. Progress goes to out, warnings
// to errOut.
func NewDriver(conv pandoc.Converter, cfg types.Config, out, errOut io.Writer) *Driver {
	root := cfg.OutputRoot()
	return &Driver{
		conv:     conv,
		cfg:      cfg,
		root:     root,
		markdown: hack.DefaultMarkdown(),
		text:     hack.DefaultText(root),
		out:      out,
		errOut:   errOut,
	}
}

// AddTextHack appends hacks that run after the default text hacks.
func (d *Driver) AddTextHack(h ...hack.Hack) {
	d.text = append(d.text, h...)
}

// AddMarkdownHack appends hacks that run after the default markdown hacks.
func (d *Driver) AddMarkdownHack(h ...hack.Hack) {
	d.markdown = append(d.markdown, h...)
}

// SetRecorder installs a recorder for document outcomes.
func (d *Driver) SetRecorder(r Recorder) {
	d.rec = r
}

// TextHacks returns the text pipeline in run order.
func (d *Driver) TextHacks() hack.Pipeline { return d.text }

// MarkdownHacks returns the markdown pipeline in run order.
func (d *Driver) MarkdownHacks() hack.Pipeline { return d.markdown }

// Run converts every indexed document in order, then writes the preamble.
// Missing sources are skipped with a warning. A pandoc failure is a warning
// or, under the abort policy, ends the run. I/O errors on intermediate files
// end the run.
func (d *Driver) Run(ctx context.Context, idx types.Index) (types.Result, error) {
	var (
		result types.Result
		big    strings.Builder
	)
	total := idx.Len()
	for i, e := range idx.Entries {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		fmt.Fprintf(d.out, "[%d/%d] %s\n", i+1, total, d.display(e.Path))
		outcome, err := d.convertDocument(e, &big)
		if err != nil {
			return result, err
		}

		switch outcome.Status {
		case types.DocConverted:
			result.Converted++
		case types.DocSkipped:
			result.Skipped++
			fmt.Fprintf(d.errOut, "warning: %s\n", outcome.Detail)
		case types.DocFailed:
			result.Failed++
			fmt.Fprintf(d.errOut, "warning: %s\n", outcome.Detail)
		}
		result.Outcomes = append(result.Outcomes, outcome)
		d.record(ctx, i+1, outcome)
	}

	fmt.Fprintf(d.out, "\nconverted: %d, skipped: %d, failed: %d (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())

	if err := d.writePreamble(big.String()); err != nil {
		return result, err
	}
	return result, nil
}

// convertDocument runs one document through markdown hacks, pandoc and text
// hacks. The hacked source text is appended to big.
func (d *Driver) convertDocument(e types.Entry, big *strings.Builder) (types.DocOutcome, error) {
	outcome := types.DocOutcome{Entry: e}

	data, err := os.ReadFile(e.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			outcome.Status = types.DocSkipped
			outcome.Detail = fmt.Sprintf("file %s not found", e.Path)
			return outcome, nil
		}
		return outcome, fmt.Errorf("reading %s: %w", e.Path, err)
	}

	source, err := d.markdown.Apply(e.Path, string(data))
	if err != nil {
		return outcome, err
	}
	if err := writeFile(e.Path, source); err != nil {
		return outcome, err
	}
	big.WriteString(source)
	big.WriteString("\n")

	target := TargetPath(e.Path, d.cfg.TargetExt)
	if err := d.conv.Convert(e.Path, target); err != nil {
		if d.cfg.OnConversionFailure == types.FailureAbort {
			return outcome, fmt.Errorf("%w for %s: %w", ErrConversionFailed, e.Path, err)
		}
		outcome.Status = types.DocFailed
		outcome.Detail = fmt.Sprintf("conversion failed for %s: %v", e.Path, err)
		return outcome, nil
	}

	converted, err := os.ReadFile(target)
	if err != nil {
		return outcome, fmt.Errorf("reading converted %s: %w", target, err)
	}
	text, err := d.text.Apply(e.Path, string(converted))
	if err != nil {
		return outcome, err
	}
	if err := writeFile(target, text); err != nil {
		return outcome, err
	}

	outcome.Status = types.DocConverted
	outcome.Output = target
	return outcome, nil
}

func (d *Driver) record(ctx context.Context, seq int, o types.DocOutcome) {
	if d.rec == nil {
		return
	}
	if err := d.rec.Record(ctx, seq, o); err != nil {
		fmt.Fprintf(d.errOut, "warning: recording %s: %v\n", o.Path, err)
	}
}

// display shortens path to its form relative to the output root.
func (d *Driver) display(path string) string {
	if rel, err := filepath.Rel(d.root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// TargetPath swaps the extension of path for ext.
func TargetPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

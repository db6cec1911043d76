// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package book runs a whole GitBook-to-LaTeX conversion: copy the tree,
// index the summary, convert every document, and assemble the master file.
package book

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/gitbook-pandoc/internal/assemble"
	"github.com/pdiddy/gitbook-pandoc/internal/convert"
	"github.com/pdiddy/gitbook-pandoc/internal/fsutil"
	"github.com/pdiddy/gitbook-pandoc/internal/hack"
	"github.com/pdiddy/gitbook-pandoc/internal/index"
	"github.com/pdiddy/gitbook-pandoc/internal/ledger"
	"github.com/pdiddy/gitbook-pandoc/internal/pandoc"
	"github.com/pdiddy/gitbook-pandoc/pkg/types"
)

// CopyError reports a failure to copy the source tree into the output root.
type CopyError struct {
	Src string
	Dst string
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("an error occurred when copying the contents of %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// Options carries the collaborators of a run.
type Options struct {
	// Converter runs pandoc.
	Converter pandoc.Converter

	// Rules are extra batch replacements, run after the default text hacks.
	Rules []hack.Rule

	// Out receives progress; Err receives warnings.
	Out io.Writer
	Err io.Writer

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run converts the book described by cfg. Files already copied or converted
// when an error occurs are left in place.
func Run(ctx context.Context, cfg types.Config, opts Options) (types.Result, error) {
	if err := cfg.Validate(); err != nil {
		return types.Result{}, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	started := now()
	root := cfg.OutputRoot()

	if err := fsutil.CopyTree(cfg.Source, root); err != nil {
		return types.Result{}, &CopyError{Src: cfg.Source, Dst: root, Err: err}
	}

	idx, err := index.Load(root, cfg)
	if err != nil {
		return types.Result{}, err
	}
	fmt.Fprintf(opts.Out, "Indexed %d documents from %s\n", idx.Len(), cfg.SummaryFilename)

	driver := convert.NewDriver(opts.Converter, cfg, opts.Out, opts.Err)
	if len(opts.Rules) > 0 {
		driver.AddTextHack(hack.BatchReplace("replace-from", opts.Rules))
	}

	var (
		store *ledger.Store
		runID int64
	)
	if cfg.Ledger != "" {
		store, err = ledger.Open(cfg.Ledger)
		if err != nil {
			return types.Result{}, err
		}
		defer store.Close()
		runID, err = store.BeginRun(ctx, cfg.Source, root, started)
		if err != nil {
			return types.Result{}, err
		}
		driver.SetRecorder(ledger.RunRecorder{Store: store, RunID: runID})
	}

	result, err := driver.Run(ctx, idx)
	if err != nil {
		return result, err
	}

	out, err := assemble.Write(cfg, result.Outcomes)
	if err != nil {
		return result, err
	}
	fmt.Fprintf(opts.Out, "Wrote book to %s\n", out)

	finished := now()
	if cfg.Report != "" {
		report := types.Report{
			Source:    cfg.Source,
			Dest:      root,
			StartedAt: started,
			Duration:  finished.Sub(started).Round(time.Millisecond).String(),
			Converted: result.Converted,
			Skipped:   result.Skipped,
			Failed:    result.Failed,
			Documents: result.Outcomes,
		}
		if err := WriteReport(cfg.Report, report); err != nil {
			return result, err
		}
	}
	if store != nil {
		if err := store.FinishRun(ctx, runID, result, finished); err != nil {
			return result, err
		}
	}
	return result, nil
}

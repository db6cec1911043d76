// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/gitbook-pandoc/internal/book"
	"github.com/pdiddy/gitbook-pandoc/internal/convert"
	"github.com/pdiddy/gitbook-pandoc/internal/hack"
	"github.com/pdiddy/gitbook-pandoc/internal/index"
	"github.com/pdiddy/gitbook-pandoc/internal/pandoc"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"pandoc unavailable", pandoc.ErrUnavailable, ExitMissing},
		{"wrapped pandoc unavailable", fmt.Errorf("checking: %w", pandoc.ErrUnavailable), ExitMissing},
		{"rules not found", fmt.Errorf("%w: x.txt", hack.ErrRulesNotFound), ExitMissing},
		{"missing flags", errMissingFlags, ExitGeneral},
		{"no summary", fmt.Errorf("%w: the file summary.md cannot be found in /b", index.ErrNoSummary), ExitGeneral},
		{"copy error", &book.CopyError{Src: "a", Dst: "b", Err: errors.New("boom")}, ExitGeneral},
		{"conversion aborted", fmt.Errorf("%w for a.md: exit 1", convert.ErrConversionFailed), ExitGeneral},
		{"unknown", errors.New("unexpected"), ExitGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

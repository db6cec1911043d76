// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/pdiddy/gitbook-pandoc/internal/hack"
	"github.com/pdiddy/gitbook-pandoc/internal/pandoc"
)

// Exit codes for the gitbook-pandoc CLI.
const (
	ExitSuccess = 0 // Book written, possibly with skipped documents
	ExitGeneral = 1 // Usage error or fatal run error
	ExitMissing = 2 // pandoc or the replacement rules file is missing
)

// exitCodeFor returns the exit code for an error returned by a command.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, pandoc.ErrUnavailable) || errors.Is(err, hack.ErrRulesNotFound) {
		return ExitMissing
	}
	return ExitGeneral
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pandoc runs the external pandoc binary.
package pandoc

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the pandoc executable looked up on PATH.
const DefaultBinary = "pandoc"

// ErrUnavailable is returned when pandoc cannot be found or does not run.
var ErrUnavailable = errors.New("pandoc cannot be found on this system")

// Converter turns one file into another. The output format follows from the
// extension of out.
type Converter interface {
	// Convert converts in to out.
	Convert(in, out string) error

	// Standalone converts in to a complete document at out, header included.
	Standalone(in, out string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args ...string) (stdout, stderr string, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Pandoc converts files by invoking the pandoc binary once per call. Calls
// block until pandoc exits.
type Pandoc struct {
	bin  string
	exec executor
}

// New returns a Pandoc that runs bin, or DefaultBinary when bin is empty.
func New(bin string) *Pandoc {
	return newPandoc(bin, &osExecutor{})
}

func newPandoc(bin string, exec executor) *Pandoc {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Pandoc{bin: bin, exec: exec}
}

// Binary returns the executable name or path.
func (p *Pandoc) Binary() string { return p.bin }

// Available checks that pandoc is on PATH and answers --version.
func (p *Pandoc) Available() error {
	if _, err := p.exec.LookPath(p.bin); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, _, err := p.exec.Run(p.bin, "--version"); err != nil {
		return fmt.Errorf("%w: %s --version: %v", ErrUnavailable, p.bin, err)
	}
	return nil
}

// Version returns the first line of pandoc --version.
func (p *Pandoc) Version() (string, error) {
	out, _, err := p.exec.Run(p.bin, "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	first, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(first), nil
}

func (p *Pandoc) Convert(in, out string) error {
	return p.run(in, "-o", out, in)
}

func (p *Pandoc) Standalone(in, out string) error {
	return p.run(in, "-o", out, "--standalone", in)
}

func (p *Pandoc) run(in string, args ...string) error {
	_, stderr, err := p.exec.Run(p.bin, args...)
	if err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return fmt.Errorf("converting %s with %s: %s: %w", in, p.bin, msg, err)
		}
		return fmt.Errorf("converting %s with %s: %w", in, p.bin, err)
	}
	return nil
}

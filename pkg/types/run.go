// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DocStatus is the outcome of converting one indexed document.
type DocStatus string

const (
	DocConverted DocStatus = "converted"
	DocSkipped   DocStatus = "skipped"
	DocFailed    DocStatus = "failed"
)

// DocOutcome records what happened to one document during a run.
type DocOutcome struct {
	Entry  `yaml:",inline"`
	Status DocStatus `json:"status" yaml:"status"`

	// Output is the converted file path. Empty unless Status is DocConverted.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Detail carries the warning or error text for skipped and failed documents.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Result holds the outcome of a conversion run.
type Result struct {
	Converted int
	Skipped   int
	Failed    int

	// Outcomes lists every indexed document in index order.
	Outcomes []DocOutcome
}

// Total returns the number of documents processed.
func (r Result) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// ConvertedEntries returns the entries that produced a converted file, in
// index order.
func (r Result) ConvertedEntries() []Entry {
	var out []Entry
	for _, o := range r.Outcomes {
		if o.Status == DocConverted {
			out = append(out, o.Entry)
		}
	}
	return out
}

// Report is the on-disk summary of a run, written when a report path is
// configured.
type Report struct {
	Source    string       `yaml:"source"`
	Dest      string       `yaml:"dest"`
	StartedAt time.Time    `yaml:"started_at"`
	Duration  string       `yaml:"duration"`
	Converted int          `yaml:"converted"`
	Skipped   int          `yaml:"skipped"`
	Failed    int          `yaml:"failed"`
	Documents []DocOutcome `yaml:"documents"`
}

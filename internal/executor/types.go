package executor

import (
	"github.com/vennelaharish28/testfire-crawler/internal/capture"
	"github.com/vennelaharish28/testfire-crawler/internal/crawler"
)

// Shot names the capture a step ends with. The zero Shot means no capture.
type Shot struct {
	Label  string
	Action string
}

// Action performs one branch of a step against the browser
type Action func(d crawler.Driver) (Shot, error)

// Step is one entry of a navigation plan
type Step struct {
	Name     string
	Icon     string
	Announce string

	Primary Action
	// Fallback runs when Primary fails. Without one, a Primary error
	// aborts the run.
	Fallback       Action
	FallbackNotice string

	// BestEffort steps only warn on failure and never capture.
	BestEffort bool
	// FailNotice turns a best-effort failure into its warning text.
	// Without one the error itself is printed.
	FailNotice func(error) string
	// Done is printed when a step that captures nothing succeeds.
	Done string
}

// Branch records which action of a step produced its outcome
type Branch int

const (
	BranchPrimary Branch = iota
	BranchFallback
)

func (b Branch) String() string {
	if b == BranchFallback {
		return "fallback"
	}
	return "primary"
}

// StepResult is the outcome of one executed step
type StepResult struct {
	Name   string
	Branch Branch
	Record *capture.Record // nil when the step captured nothing
}

// Report summarizes a run
type Report struct {
	Target  string
	Steps   []StepResult
	Records []capture.Record // every capture in order, including an error page
	Err     error            // the error that ended the run early, if any
}

// Paths lists the screenshot files of the run in capture order
func (r *Report) Paths() []string {
	paths := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		paths = append(paths, rec.Path)
	}
	return paths
}

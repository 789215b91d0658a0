package framework

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the machine-readable form of Results written by WriteReport.
type Report struct {
	GeneratedAt time.Time      `yaml:"generatedAt"`
	Passed      int            `yaml:"passed"`
	Failed      int            `yaml:"failed"`
	Skipped     int            `yaml:"skipped"`
	Tests       []ReportedTest `yaml:"tests"`
}

type ReportedTest struct {
	ID         string   `yaml:"id"`
	Status     string   `yaml:"status"`
	SkipReason string   `yaml:"skipReason,omitempty"`
	Errors     []string `yaml:"errors,omitempty"`
}

const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// NewReport builds a Report in the order in which tests finished. The root of the tree is left out.
func NewReport(results Results, now time.Time) Report {
	r := Report{GeneratedAt: now}
	r.Passed, r.Failed, r.Skipped = results.Counts()

	failed := make(map[string]bool, len(results.Failures))
	for _, f := range results.Failures {
		failed[f.TestID.String()] = true
	}
	for _, t := range results.Tests {
		if len(t.TestID.Path) == 0 {
			continue
		}
		rt := ReportedTest{ID: t.TestID.String(), Status: StatusPassed}
		switch {
		case failed[rt.ID]:
			rt.Status = StatusFailed
		case t.Skipped:
			rt.Status = StatusSkipped
			rt.SkipReason = t.SkipReason
		}
		for _, err := range t.Errors {
			rt.Errors = append(rt.Errors, reformatError(err).Error())
		}
		r.Tests = append(r.Tests, rt)
	}
	return r
}

// WriteReport encodes the results as YAML.
func WriteReport(w io.Writer, results Results) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewReport(results, time.Now().UTC())); err != nil {
		return err
	}
	return enc.Close()
}

package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of tests that passed, failed, and were skipped. The root of the
// tree, which has an empty ID, is not counted.
func (r Results) Counts() (passed, failed, skipped int) {
	failedIDs := make(map[string]bool, len(r.Failures))
	for _, f := range r.Failures {
		failedIDs[f.TestID.String()] = true
	}
	for _, t := range r.Tests {
		switch {
		case len(t.TestID.Path) == 0:
		case failedIDs[t.TestID.String()]:
			failed++
		case t.Skipped:
			skipped++
		default:
			passed++
		}
	}
	return
}

type TestID struct {
	Path []string
}

// Child returns the ID of a subtest. The receiver's path is copied, so sibling IDs never share
// a backing array.
func (t TestID) Child(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	return TestID{Path: append(append(path, t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// PrintResults writes a summary of the test run, followed by every failure and its errors.
func PrintResults(out io.Writer, results Results) {
	passed, failed, skipped := results.Counts()
	summary := fmt.Sprintf("%d passed, %d failed, %d skipped", passed, failed, skipped)
	if results.OK() {
		fmt.Fprintln(out, color.GreenString("All tests passed (%s)", summary))
		return
	}
	fmt.Fprintln(out, color.RedString("Some tests failed (%s):", summary))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(reformatError(err).Error(), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
}

// reformatError trims the trailing blank lines that testify leaves at the end of its messages.
func reformatError(err error) error {
	msg := strings.TrimRight(err.Error(), "\n\t ")
	if msg == err.Error() {
		return err
	}
	return fmt.Errorf("%s", msg)
}

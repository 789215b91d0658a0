package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests the way "go test -run" and "-skip" do: each pattern is split on
// "/" and each element is matched against the test name at the same depth.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatchPrefix(id)) &&
		!r.MustNotMatch.AnyMatch(id)
}

func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

// RegexList implements pflag.Value, so it can be given as a repeatable command-line flag.
type RegexList struct {
	patterns []levelPattern
}

type levelPattern struct {
	source string
	levels []*regexp.Regexp
}

func (r *RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.source+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	p := levelPattern{source: value}
	for _, element := range strings.Split(value, "/") {
		rx, err := regexp.Compile(element)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		p.levels = append(p.levels, rx)
	}
	r.patterns = append(r.patterns, p)
	return nil
}

func (r *RegexList) Type() string {
	return "regex"
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// AnyMatchPrefix is true if, for some pattern, every name in the ID matches the pattern element
// at the same depth. Names deeper than the pattern match anything, so the parents and children
// of a selected test are also selected.
func (r RegexList) AnyMatchPrefix(id TestID) bool {
	for _, p := range r.patterns {
		if p.match(id.Path, true) {
			return true
		}
	}
	return false
}

// AnyMatch is true if, for some pattern, the ID is at least as deep as the pattern and every
// pattern element matches. Parents of a matching test do not match.
func (r RegexList) AnyMatch(id TestID) bool {
	for _, p := range r.patterns {
		if p.match(id.Path, false) {
			return true
		}
	}
	return false
}

func (p levelPattern) match(path []string, allowShorter bool) bool {
	if len(path) < len(p.levels) && !allowShorter {
		return false
	}
	for i, name := range path {
		if i >= len(p.levels) {
			break
		}
		if !p.levels[i].MatchString(name) {
			return false
		}
	}
	return true
}

// ExactPattern returns a pattern that selects exactly the test with this ID and its subtests.
func ExactPattern(id TestID) string {
	elements := make([]string, 0, len(id.Path))
	for _, name := range id.Path {
		elements = append(elements, "^"+regexp.QuoteMeta(name)+"$")
	}
	return strings.Join(elements, "/")
}

func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any not matching %s\n", &filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any matching %s\n", &filters.MustNotMatch)
	}
	fmt.Fprintln(out)
}

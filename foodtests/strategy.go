package foodtests

import (
	"fmt"
	"strings"

	"github.com/ibs-qa/food-contract-tests/config"
	"github.com/ibs-qa/food-contract-tests/framework"
)

// Strategy selects one of the workflows. Each selected strategy is a top-level test.
type Strategy string

const (
	// SessionScoped runs the full four-step workflow once per fixture, each run in its own session.
	SessionScoped Strategy = "session-scoped"

	// SuiteScoped lists once, adds every fixture in order without a session, checks one
	// configured item, and resets once.
	SuiteScoped Strategy = "suite-scoped"

	// ResetIdempotence resets twice and checks that the baseline listing is the same both times.
	ResetIdempotence Strategy = "reset-idempotence"
)

var AllStrategies = []Strategy{SessionScoped, SuiteScoped, ResetIdempotence}

// ParseStrategies converts strategy names, dropping duplicates but keeping the given order.
func ParseStrategies(names []string) ([]Strategy, error) {
	var ret []Strategy
	seen := make(map[Strategy]bool)
	for _, name := range names {
		s := Strategy(strings.TrimSpace(name))
		if !s.valid() {
			return nil, &config.ConfigError{Key: "strategies", Err: fmt.Errorf("unknown strategy %q (known: %s)", name, strategyList())}
		}
		if !seen[s] {
			seen[s] = true
			ret = append(ret, s)
		}
	}
	return ret, nil
}

func (s Strategy) valid() bool {
	for _, known := range AllStrategies {
		if s == known {
			return true
		}
	}
	return false
}

func strategyList() string {
	names := make([]string, 0, len(AllStrategies))
	for _, s := range AllStrategies {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// RunID returns the ID of the workflow run that contains the test: the fixture's run for the
// session-scoped strategy, or the whole strategy otherwise. A single step is never rerun on its own.
func RunID(id framework.TestID) framework.TestID {
	depth := 1
	if len(id.Path) > 0 && id.Path[0] == string(SessionScoped) {
		depth = 2
	}
	if len(id.Path) <= depth {
		return id
	}
	return framework.TestID{Path: append([]string(nil), id.Path[:depth]...)}
}

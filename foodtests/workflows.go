package foodtests

import (
	"fmt"

	"github.com/ibs-qa/food-contract-tests/client"
	"github.com/ibs-qa/food-contract-tests/config"

	"github.com/stretchr/testify/require"
)

// Run runs every configured strategy as a top-level subtest of s, in configuration order.
func (d *Driver) Run(s Scope) {
	for _, strategy := range d.cfg.Strategies {
		s.Run(string(strategy), d.Workflow(strategy))
	}
}

// Workflow returns the test function for a strategy.
func (d *Driver) Workflow(strategy Strategy) func(Scope) {
	switch strategy {
	case SessionScoped:
		return d.RunSessionScoped
	case SuiteScoped:
		return d.RunSuiteScoped
	case ResetIdempotence:
		return d.RunResetIdempotence
	default:
		return func(s Scope) {
			require.Fail(s, "unknown strategy", "%q", strategy)
		}
	}
}

// RunSessionScoped runs the four-step workflow once per fixture, in fixture order. Each fixture's
// run is a subtest named after the fixture, with its own session. A failure in one fixture's run
// does not stop the others.
func (d *Driver) RunSessionScoped(s Scope) {
	if len(d.cfg.Fixtures) == 0 {
		s.Debug("No test data is configured")
	}
	for _, f := range d.cfg.Fixtures {
		f := f
		s.Run(f.ID(), func(s Scope) { d.runFixture(s, f) })
	}
}

func (d *Driver) runFixture(s Scope, f config.Fixture) {
	session, err := d.client.NewSession()
	require.NoError(s, err)
	s.Defer(session.Close)
	s.Debug("Fixture %s uses session %s", f.ID(), session.ID())

	item := d.FoodItem(s, f)
	n := d.cfg.BaselineCount
	steps := append(d.prepareSteps(session),
		step{StepGetFoodList, func(s Scope) { d.RequireFoodList(s, session, n) }},
		step{StepAddFood, func(s Scope) { d.AddFood(s, session, item) }},
		step{StepCheckFoodExistence, func(s Scope) { d.CheckFoodExistence(s, session, n, item, n+1) }},
		step{StepResetTestData, func(s Scope) { d.ResetTestData(s, session) }},
	)
	runSteps(s, steps)
}

// RunSuiteScoped lists the catalog once, adds every fixture in order, checks the configured
// expected item, and resets once. No session is carried between calls.
func (d *Driver) RunSuiteScoped(s Scope) {
	n := d.cfg.BaselineCount
	steps := append(d.prepareSteps(nil),
		step{StepGetFoodList, func(s Scope) { d.RequireFoodList(s, nil, n) }},
		step{StepAddFood, d.addAllFixtures},
		step{StepCheckFoodExistence, func(s Scope) {
			d.CheckFoodExistence(s, nil, d.cfg.ExpectedIndex, d.cfg.ExpectedItem, -1)
		}},
		step{StepResetTestData, func(s Scope) { d.ResetTestData(s, nil) }},
	)
	runSteps(s, steps)
}

// addAllFixtures posts each fixture as its own subtest. After the first failure the remaining
// fixtures are skipped.
func (d *Driver) addAllFixtures(s Scope) {
	steps := make([]step, 0, len(d.cfg.Fixtures))
	for _, f := range d.cfg.Fixtures {
		f := f
		steps = append(steps, step{f.ID(), func(s Scope) { d.AddFood(s, nil, d.FoodItem(s, f)) }})
	}
	if !runSteps(s, steps) {
		s.Errorf("not every fixture could be added")
		s.FailNow()
	}
}

// RunResetIdempotence resets the catalog twice, listing it after each reset. Both listings must
// have the baseline size and be identical.
func (d *Driver) RunResetIdempotence(s Scope) {
	session, err := d.client.NewSession()
	require.NoError(s, err)
	s.Defer(session.Close)

	n := d.cfg.BaselineCount
	var first, second []string
	listInto := func(dest *[]string) func(Scope) {
		return func(s Scope) {
			for _, item := range d.RequireFoodList(s, session, n) {
				*dest = append(*dest, item.String())
			}
		}
	}
	runSteps(s, []step{
		{numbered(StepResetTestData, 1), func(s Scope) { d.ResetTestData(s, session) }},
		{numbered(StepGetFoodList, 1), listInto(&first)},
		{numbered(StepResetTestData, 2), func(s Scope) { d.ResetTestData(s, session) }},
		{numbered(StepGetFoodList, 2), func(s Scope) {
			listInto(&second)(s)
			require.Equal(s, first, second, "listing after second reset differs from listing after first reset")
		}},
	})
}

// prepareSteps returns the extra steps that start every workflow run when the catalog state
// cannot be assumed to be at its baseline.
func (d *Driver) prepareSteps(session *client.Session) []step {
	if d.cfg.Isolation != config.IsolationResetPerRun {
		return nil
	}
	return []step{{StepPrepare, func(s Scope) { d.ResetTestData(s, session) }}}
}

func numbered(name string, n int) string {
	return fmt.Sprintf("%s (%d)", name, n)
}

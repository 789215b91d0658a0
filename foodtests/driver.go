package foodtests

import (
	"context"
	"net/http"

	"github.com/ibs-qa/food-contract-tests/client"
	"github.com/ibs-qa/food-contract-tests/config"
	"github.com/ibs-qa/food-contract-tests/servicedef"

	"github.com/stretchr/testify/require"
)

// Step names. They are the last element of each step's test ID.
const (
	StepGetFoodList        = "get food list"
	StepAddFood            = "add food"
	StepCheckFoodExistence = "check food existence"
	StepResetTestData      = "reset test data"
	StepPrepare            = "prepare: reset test data"

	previousStepFailed = "previous step failed"
)

// Driver runs workflows against the catalog service. All of its state comes from the SuiteConfig
// and the Client it was created with.
type Driver struct {
	client *client.Client
	cfg    SuiteConfig
}

func NewDriver(c *client.Client, cfg SuiteConfig) *Driver {
	return &Driver{client: c, cfg: cfg}
}

func (d *Driver) Config() SuiteConfig {
	return d.cfg
}

// clientFor returns a client that logs to the test's debug output.
func (d *Driver) clientFor(s Scope) *client.Client {
	return d.client.WithLogger(s.DebugLogger())
}

// FoodItem builds the request body for a fixture, translating its category label.
func (d *Driver) FoodItem(s Scope, f config.Fixture) servicedef.FoodItem {
	code := d.cfg.Mapping.Normalize(f.CategoryLabel)
	if !d.cfg.Mapping.Known(f.CategoryLabel) {
		s.Debug("Category label %q is not mapped, using %s", f.CategoryLabel, code)
	}
	return servicedef.FoodItem{Name: f.Name, Type: code, Exotic: f.IsExotic}
}

// RequireFoodList lists the catalog and fails the test unless the service returns 200 and exactly
// expectedCount items.
func (d *Driver) RequireFoodList(s Scope, session *client.Session, expectedCount int) []servicedef.FoodItem {
	resp, items := d.listFood(s, session)
	requireCount(s, resp, items, expectedCount)
	return items
}

// AddFood posts item and fails the test unless the service returns 200.
func (d *Driver) AddFood(s Scope, session *client.Session, item servicedef.FoodItem) {
	resp, err := d.clientFor(s).AddFood(context.Background(), session, item)
	require.NoError(s, err)
	requireStatus(s, resp, http.StatusOK)
}

// CheckFoodExistence lists the catalog and fails the test unless the item at the zero-based index
// equals expected. If expectedCount is not negative, the size of the list is checked first.
func (d *Driver) CheckFoodExistence(
	s Scope,
	session *client.Session,
	index int,
	expected servicedef.FoodItem,
	expectedCount int,
) {
	resp, items := d.listFood(s, session)
	if expectedCount >= 0 {
		requireCount(s, resp, items, expectedCount)
	}
	if index < 0 || index >= len(items) {
		require.Failf(s, "expected food item is missing",
			"expected %s at index %d, but the list has %d items; got %s", expected, index, len(items), resp)
	}
	if actual := items[index]; !actual.Equal(expected) {
		require.Failf(s, "food item does not match",
			"at index %d\nexpected: %s\nactual:   %s", index, expected, actual)
	}
}

// ResetTestData asks the service to restore its baseline and fails the test unless it returns 200.
func (d *Driver) ResetTestData(s Scope, session *client.Session) {
	resp, err := d.clientFor(s).ResetData(context.Background(), session)
	require.NoError(s, err)
	requireStatus(s, resp, http.StatusOK)
}

func (d *Driver) listFood(s Scope, session *client.Session) (*client.Response, []servicedef.FoodItem) {
	resp, err := d.clientFor(s).ListFood(context.Background(), session)
	require.NoError(s, err)
	requireStatus(s, resp, http.StatusOK)
	items, err := resp.Items()
	require.NoError(s, err)
	return resp, items
}

func requireStatus(s Scope, resp *client.Response, expected int) {
	if resp.StatusCode != expected {
		require.Failf(s, "unexpected response status", "expected HTTP %d, got %s", expected, resp)
	}
}

func requireCount(s Scope, resp *client.Response, items []servicedef.FoodItem, expected int) {
	if len(items) != expected {
		require.Failf(s, "unexpected number of food items",
			"expected %d items, got %d; %s", expected, len(items), resp)
	}
}

type step struct {
	name   string
	action func(Scope)
}

// runSteps runs each step as a subtest, in order. Once a step has failed, the steps after it are
// reported as skipped. It returns false if any step failed.
func runSteps(s Scope, steps []step) bool {
	ok := true
	for _, st := range steps {
		if !ok {
			s.Run(st.name, func(s Scope) { s.Skip(previousStepFailed) })
			continue
		}
		ok = s.Run(st.name, st.action)
	}
	return ok
}

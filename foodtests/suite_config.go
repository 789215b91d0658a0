package foodtests

import (
	"github.com/ibs-qa/food-contract-tests/category"
	"github.com/ibs-qa/food-contract-tests/config"
	"github.com/ibs-qa/food-contract-tests/servicedef"
)

// SuiteConfig is everything a Driver needs to know about a test run.
type SuiteConfig struct {
	// BaselineCount is the number of items the catalog holds after a reset.
	BaselineCount int

	Strategies []Strategy

	// Isolation is config.IsolationShared or config.IsolationResetPerRun.
	Isolation string

	Fixtures []config.Fixture
	Mapping  category.Mapping

	// ExpectedIndex and ExpectedItem are the zero-based position and value that the
	// suite-scoped workflow checks after adding every fixture.
	ExpectedIndex int
	ExpectedItem  servicedef.FoodItem
}

// NewSuiteConfig reads the test data and derives a SuiteConfig, using the default category
// mapping.
func NewSuiteConfig(c *config.Config) (SuiteConfig, error) {
	strategies, err := ParseStrategies(c.Strategies)
	if err != nil {
		return SuiteConfig{}, err
	}
	fixtures, err := c.Fixtures()
	if err != nil {
		return SuiteConfig{}, err
	}
	index, item := c.SuiteScopedExpectation()
	return SuiteConfig{
		BaselineCount: c.BaselineCount,
		Strategies:    strategies,
		Isolation:     c.Isolation,
		Fixtures:      fixtures,
		Mapping:       category.Default,
		ExpectedIndex: index,
		ExpectedItem:  item,
	}, nil
}

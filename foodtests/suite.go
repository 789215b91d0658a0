package foodtests

import (
	"github.com/ibs-qa/food-contract-tests/client"
	"github.com/ibs-qa/food-contract-tests/framework"
)

// RunTestSuite runs every configured strategy in the harness's own test tree.
func RunTestSuite(
	harness *framework.TestHarness,
	c *client.Client,
	cfg SuiteConfig,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	driver := NewDriver(c, cfg)
	return framework.Run(filter, testLogger, func(ctx *framework.Context) {
		driver.Run(NewT(ctx, harness.Logger()))
	})
}

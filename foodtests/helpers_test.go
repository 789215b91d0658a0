package foodtests

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ibs-qa/food-contract-tests/category"
	"github.com/ibs-qa/food-contract-tests/client"
	"github.com/ibs-qa/food-contract-tests/config"
	"github.com/ibs-qa/food-contract-tests/framework"
	"github.com/ibs-qa/food-contract-tests/mockcatalog"
	"github.com/ibs-qa/food-contract-tests/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func fixtureList(entries ...config.Fixture) []config.Fixture {
	for i := range entries {
		entries[i].Index = i
	}
	return entries
}

func fixture(name, label string, exotic ldvalue.Value) config.Fixture {
	return config.Fixture{Name: name, CategoryLabel: label, IsExotic: exotic}
}

var (
	banana   = fixture("Банан", "Фрукт", ldvalue.Bool(false))
	cucumber = fixture("Огурец", "Овощ", ldvalue.Bool(false))
	mango    = fixture("Манго", "Фрукт", ldvalue.Null())
	berry    = fixture("Малина", "Ягода", ldvalue.Bool(true))

	apple = servicedef.FoodItem{Name: "Яблоко", Type: servicedef.CategoryFruit, Exotic: ldvalue.Bool(false)}
)

func testSuiteConfig(strategies []Strategy, fixtures ...config.Fixture) SuiteConfig {
	return SuiteConfig{
		BaselineCount: 4,
		Strategies:    strategies,
		Isolation:     config.IsolationShared,
		Fixtures:      fixtureList(fixtures...),
		Mapping:       category.Default,
		ExpectedIndex: 3,
		ExpectedItem:  apple,
	}
}

// withCatalog starts an HTTP server for the mock catalog and gives the action a client for it.
func withCatalog(t *testing.T, catalog *mockcatalog.Server, action func(*client.Client)) {
	httphelpers.WithServer(catalog.Handler(), func(server *httptest.Server) {
		c, err := client.NewClient(server.URL, time.Second)
		require.NoError(t, err)
		defer c.CloseIdleConnections()
		action(c)
	})
}

func runSuite(t *testing.T, catalog *mockcatalog.Server, cfg SuiteConfig) framework.Results {
	var results framework.Results
	withCatalog(t, catalog, func(c *client.Client) {
		harness, err := framework.NewTestHarness(c.BaseURL(), servicedef.FoodPath, 0, nil, nil)
		require.NoError(t, err)
		results = RunTestSuite(harness, c, cfg, nil, nil)
	})
	return results
}

type reportedTests map[string]framework.ReportedTest

func reported(results framework.Results) reportedTests {
	ret := make(reportedTests)
	for _, test := range framework.NewReport(results, time.Time{}).Tests {
		ret[test.ID] = test
	}
	return ret
}

func (r reportedTests) status(id ...string) string {
	return r[strings.Join(id, "/")].Status
}

func (r reportedTests) errors(id ...string) string {
	return strings.Join(r[strings.Join(id, "/")].Errors, "\n")
}

func (r reportedTests) skipReason(id ...string) string {
	return r[strings.Join(id, "/")].SkipReason
}

func requestSummary(requests []mockcatalog.RecordedRequest) []string {
	ret := make([]string, 0, len(requests))
	for _, r := range requests {
		ret = append(ret, r.Method+" "+r.Path)
	}
	return ret
}

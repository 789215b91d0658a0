package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ibs-qa/food-contract-tests/framework"
	"github.com/ibs-qa/food-contract-tests/mockcatalog"
	"github.com/ibs-qa/food-contract-tests/servicedef"

	"github.com/fatih/color"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testConfig = `
url: http://localhost:1
startupTimeout: 1s
timeout: 2s
log:
  level: error
testData:
  - name: Банан
    type: Фрукт
    isExotic: false
  - name: Огурец
    type: Овощ
    isExotic: false
`

func init() {
	color.NoColor = true
}

func writeTestConfig(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	var out, logOut bytes.Buffer
	cmd := newRootCommand(&out, &logOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPassesAgainstCatalog(t *testing.T) {
	catalog := mockcatalog.New(mockcatalog.Options{})
	httphelpers.WithServer(catalog.Handler(), func(server *httptest.Server) {
		reportPath := filepath.Join(t.TempDir(), "report.yaml")
		out, err := runCommand(t, "--config", writeTestConfig(t), "--url", server.URL, "--report", reportPath)
		require.NoError(t, err, out)

		assert.Contains(t, out, "Connecting to service at "+server.URL+servicedef.FoodPath)
		assert.Contains(t, out, "[session-scoped/#1 Банан/add food]")
		assert.Contains(t, out, "All tests passed")

		data, err := os.ReadFile(reportPath)
		require.NoError(t, err)
		var report framework.Report
		require.NoError(t, yaml.Unmarshal(data, &report))
		assert.Zero(t, report.Failed)
		assert.NotZero(t, report.Passed)
	})
}

func TestCommandReportsFailuresWithRerunHint(t *testing.T) {
	catalog := mockcatalog.New(mockcatalog.Options{})
	catalog.Override(http.MethodPost, servicedef.FoodPath, http.StatusInternalServerError, `{"error":"down"}`)
	httphelpers.WithServer(catalog.Handler(), func(server *httptest.Server) {
		out, err := runCommand(t, "--config", writeTestConfig(t), "--url", server.URL, "--strategy", "session-scoped")
		require.ErrorIs(t, err, errTestsFailed)

		assert.Contains(t, out, "FAILED: session-scoped/#1 Банан/add food")
		assert.Contains(t, out, "SKIPPED: session-scoped/#1 Банан/check food existence (previous step failed)")
		assert.Contains(t, out, "Some tests failed")
		assert.Contains(t, out, fmt.Sprintf("%s --config ", commandName))
		assert.Contains(t, out, `--run '^session-scoped$/^#1 Банан$'`)
		assert.Contains(t, out, `--run '^session-scoped$/^#2 Огурец$'`)
		assert.NotContains(t, out, "[suite-scoped]")
	})
}

func TestCommandRunFilter(t *testing.T) {
	catalog := mockcatalog.New(mockcatalog.Options{})
	httphelpers.WithServer(catalog.Handler(), func(server *httptest.Server) {
		out, err := runCommand(t, "--config", writeTestConfig(t), "--url", server.URL, "--run", "reset-idempotence")
		require.NoError(t, err, out)
		assert.Contains(t, out, `skip any not matching "reset-idempotence"`)
		assert.Contains(t, out, "SKIPPED: session-scoped (excluded by filter parameters)")
		for _, req := range catalog.Requests()[1:] {
			assert.NotEqual(t, http.MethodPost+" "+servicedef.FoodPath, req.Method+" "+req.Path)
		}
	})
}

func TestCommandFailsOnBadConfig(t *testing.T) {
	_, err := runCommand(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errTestsFailed)
}

func TestCommandFailsWhenServiceUnreachable(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	_, err := runCommand(t, "--config", writeTestConfig(t), "--url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog service error")
}

func TestRerunCommandQuotesPatterns(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{"--url", "http://host:8080"}))
	params := commandParams{serviceURL: "http://host:8080"}
	failure := framework.TestResult{TestID: framework.TestID{Path: []string{"suite-scoped", "add food", "#1 Банан"}}}
	results := framework.Results{Tests: []framework.TestResult{failure}, Failures: []framework.TestResult{failure, failure}}

	assert.Equal(t, commandName+" --url http://host:8080 --run '^suite-scoped$'", rerunCommand(cmd, params, results))
}

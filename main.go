package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ibs-qa/food-contract-tests/client"
	"github.com/ibs-qa/food-contract-tests/config"
	"github.com/ibs-qa/food-contract-tests/foodtests"
	"github.com/ibs-qa/food-contract-tests/framework"
	"github.com/ibs-qa/food-contract-tests/servicedef"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const commandName = "food-contract-tests"

var errTestsFailed = errors.New("some tests failed")

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(out, logOut io.Writer) *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:   commandName,
		Short: "Run the food catalog workflows against a catalog service",
		Long: `Runs the configured workflow strategies against the food catalog service and reports
each workflow step as a test. The exit status is 0 only if every test passed.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, params, out, logOut)
		},
	}
	cmd.SetOut(out)
	params.addFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, params commandParams, out, logOut io.Writer) error {
	if params.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(config.Options{Path: params.configPath, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	suiteConfig, err := foodtests.NewSuiteConfig(cfg)
	if err != nil {
		return err
	}

	logger, err := framework.NewConsoleZapLogger(logOut, cfg.Log.Level)
	if err != nil {
		return &config.ConfigError{Key: "log.level", Err: err}
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded",
		zap.String("url", cfg.URL),
		zap.Strings("strategies", cfg.Strategies),
		zap.String("isolation", cfg.Isolation),
		zap.Int("baselineCount", cfg.BaselineCount),
		zap.Int("fixtures", len(suiteConfig.Fixtures)),
	)
	mainDebugLogger := framework.ZapLogger(logger)

	harness, err := framework.NewTestHarness(cfg.URL, servicedef.FoodPath, cfg.StartupTimeout, mainDebugLogger, out)
	if err != nil {
		return fmt.Errorf("catalog service error: %w", err)
	}
	catalogClient, err := client.NewClient(harness.ServiceBaseURL(), cfg.Timeout)
	if err != nil {
		return err
	}
	defer catalogClient.CloseIdleConnections()

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)

	fmt.Fprintln(out, "Running test suite")
	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := foodtests.RunTestSuite(harness, catalogClient, suiteConfig, params.filters.AsFilter, testLogger)

	fmt.Fprintln(out)
	framework.PrintResults(out, results)

	if params.reportPath != "" {
		if err := writeReport(params.reportPath, results); err != nil {
			logger.Error("could not write report", zap.String("path", params.reportPath), zap.Error(err))
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", zap.String("path", params.reportPath))
	}

	if !results.OK() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To rerun only the failed workflows:")
		fmt.Fprintf(out, "  %s\n", rerunCommand(cmd, params, results))
		return errTestsFailed
	}
	return nil
}

func writeReport(path string, results framework.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := framework.WriteReport(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

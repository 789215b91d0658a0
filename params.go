package main

import (
	"strings"

	"github.com/ibs-qa/food-contract-tests/config"
	"github.com/ibs-qa/food-contract-tests/foodtests"
	"github.com/ibs-qa/food-contract-tests/framework"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type commandParams struct {
	configPath string
	serviceURL string
	strategies []string
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
	reportPath string
	noColor    bool
}

// addFlags defines the command-line flags. The "url" and "strategy" flags are read through the
// configuration loader, which gives them precedence over the file and the environment.
func (c *commandParams) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", config.DefaultPath, "configuration file (yaml, json, or toml)")
	fs.StringVar(&c.serviceURL, "url", "", "catalog service base URL, overrides the configuration")
	fs.StringSliceVar(&c.strategies, "strategy", nil, "workflow strategy to run, overrides the configuration (repeatable)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "show debug output for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show debug output for all tests")
	fs.StringVar(&c.reportPath, "report", "", "write the results as YAML to this file")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
}

// rerunCommand builds a shell command that runs only the workflow runs containing a failure, with
// the same configuration.
func rerunCommand(cmd *cobra.Command, params commandParams, results framework.Results) string {
	var b commandBuilder
	b.add(commandName)
	if cmd.Flags().Changed("config") {
		b.add("--config", params.configPath)
	}
	if params.serviceURL != "" {
		b.add("--url", params.serviceURL)
	}
	for _, s := range params.strategies {
		b.add("--strategy", s)
	}
	seen := make(map[string]bool)
	for _, f := range results.Failures {
		pattern := framework.ExactPattern(foodtests.RunID(f.TestID))
		if !seen[pattern] {
			seen[pattern] = true
			b.add("--run", pattern)
		}
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

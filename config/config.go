// Package config loads the test-run configuration: where the catalog service is, how long to
// wait for it, which workflow strategies to run, and the parameterized test data.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ibs-qa/food-contract-tests/servicedef"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	DefaultPath = "app.yaml"
	EnvPrefix   = "FOODTEST"

	defaultTimeout        = time.Second * 10
	defaultStartupTimeout = time.Second * 10
	defaultBaselineCount  = 4
)

// Isolation values describe what the harness may assume about server-side state between
// workflow runs.
const (
	// IsolationShared means all runs see the same server state, and each workflow's own reset
	// step is what brings the catalog back to its baseline.
	IsolationShared = "shared"
	// IsolationResetPerRun adds a reset before every workflow run, so that a run does not depend
	// on what an earlier (possibly failed) run left behind.
	IsolationResetPerRun = "reset-per-run"
)

// ErrInvalidConfig is matched by errors.Is for every *ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a missing or malformed configuration value.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration: %s", e.Err)
	}
	return fmt.Sprintf("configuration key %q: %s", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

func configErrorf(key, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Key: key, Err: fmt.Errorf(format, args...)}
}

// Config is the validated configuration for one test run.
type Config struct {
	URL            string            `mapstructure:"url"`
	Timeout        time.Duration     `mapstructure:"timeout"`
	StartupTimeout time.Duration     `mapstructure:"startupTimeout"`
	BaselineCount  int               `mapstructure:"baselineCount"`
	Strategies     []string          `mapstructure:"strategies"`
	Isolation      string            `mapstructure:"isolation"`
	SuiteScoped    SuiteScopedConfig `mapstructure:"suiteScoped"`
	Log            LogConfig         `mapstructure:"log"`

	source Source
}

// SuiteScopedConfig holds the literal expectation checked by the suite-scoped workflow after all
// insertions. It refers to an item that is part of the baseline data set.
type SuiteScopedConfig struct {
	// ExpectedIndex is zero-based; a negative value means BaselineCount-1.
	ExpectedIndex int                `mapstructure:"expectedIndex"`
	ExpectedItem  ExpectedItemConfig `mapstructure:"expectedItem"`
}

type ExpectedItemConfig struct {
	Name   string `mapstructure:"name"`
	Type   string `mapstructure:"type"`
	Exotic *bool  `mapstructure:"exotic"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// Path is the configuration file. Its extension selects the format (yaml, json, toml).
	Path string
	// Flags, if set, may override "url" and "strategies" by defining flags named "url" and
	// "strategy".
	Flags *pflag.FlagSet
}

// Load reads configuration with this precedence, highest first: command-line flags, FOODTEST_*
// environment variables, the configuration file, built-in defaults. The test data is validated
// here as well, so that a malformed fixture is reported before any test runs.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		if f := opts.Flags.Lookup("url"); f != nil {
			_ = v.BindPFlag("url", f)
		}
		if f := opts.Flags.Lookup("strategy"); f != nil {
			_ = v.BindPFlag("strategies", f)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("url", "") // makes FOODTEST_URL visible to Unmarshal when the file has no url
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("startupTimeout", defaultStartupTimeout)
	v.SetDefault("baselineCount", defaultBaselineCount)
	v.SetDefault("strategies", []string{"session-scoped", "suite-scoped", "reset-idempotence"})
	v.SetDefault("isolation", IsolationShared)
	v.SetDefault("suiteScoped.expectedIndex", -1)
	v.SetDefault("suiteScoped.expectedItem.name", "Яблоко")
	v.SetDefault("suiteScoped.expectedItem.type", string(servicedef.CategoryFruit))
	v.SetDefault("suiteScoped.expectedItem.exotic", false)
	v.SetDefault("log.level", "warn")
}

func fromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, &ConfigError{Err: err}
	}
	c.source = v
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := c.Fixtures(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks everything except the test data.
func (c *Config) Validate() error {
	if c.URL == "" {
		return configErrorf("url", "is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return &ConfigError{Key: "url", Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return configErrorf("url", "must be an absolute http or https URL, got %q", c.URL)
	}
	if c.Timeout <= 0 {
		return configErrorf("timeout", "must be positive")
	}
	if c.StartupTimeout < 0 {
		return configErrorf("startupTimeout", "must not be negative")
	}
	if c.BaselineCount < 0 {
		return configErrorf("baselineCount", "must not be negative")
	}
	switch c.Isolation {
	case IsolationShared, IsolationResetPerRun:
	default:
		return configErrorf("isolation", "must be %q or %q, got %q", IsolationShared, IsolationResetPerRun, c.Isolation)
	}
	if c.SuiteScoped.ExpectedIndex >= 0 && c.SuiteScoped.ExpectedIndex >= c.BaselineCount {
		return configErrorf("suiteScoped.expectedIndex", "must refer to a baseline item (less than %d)", c.BaselineCount)
	}
	return nil
}

// Fixtures reads the test data again from the configuration source. The result is in
// configuration order.
func (c *Config) Fixtures() ([]Fixture, error) {
	if c.source == nil {
		return nil, configErrorf(testDataKey, "no configuration source")
	}
	return LoadFixtures(c.source)
}

// SuiteScopedExpectation returns the zero-based index and the item that the suite-scoped
// workflow expects to find after its insertions.
func (c *Config) SuiteScopedExpectation() (int, servicedef.FoodItem) {
	index := c.SuiteScoped.ExpectedIndex
	if index < 0 {
		index = c.BaselineCount - 1
	}
	e := c.SuiteScoped.ExpectedItem
	item := servicedef.FoodItem{Name: e.Name, Type: servicedef.CategoryCode(e.Type), Exotic: ldvalue.Null()}
	if e.Exotic != nil {
		item.Exotic = ldvalue.Bool(*e.Exotic)
	}
	return index, item
}

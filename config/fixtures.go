package config

import (
	"fmt"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const testDataKey = "testData"

// Source is anything that can return a raw configuration value by key. *viper.Viper is one.
type Source interface {
	Get(key string) interface{}
}

// Fixture is one parameterized test case from the testData list.
type Fixture struct {
	// Index is the zero-based position of the fixture in the configuration.
	Index         int
	Name          string
	CategoryLabel string
	// IsExotic is a boolean value or null.
	IsExotic ldvalue.Value
}

// ID is how the fixture is named in test output, e.g. "#1 Банан".
func (f Fixture) ID() string {
	return fmt.Sprintf("#%d %s", f.Index+1, f.Name)
}

// LoadFixtures reads the testData list from src. Each entry must have a string "name", a string
// "type" (the category label) and an "isExotic" key whose value is a boolean or null.
func LoadFixtures(src Source) ([]Fixture, error) {
	raw := src.Get(testDataKey)
	if raw == nil {
		return nil, configErrorf(testDataKey, "is required")
	}

	var entries []interface{}
	switch list := raw.(type) {
	case []interface{}:
		entries = list
	case []map[string]interface{}: // TOML arrays of tables
		for _, m := range list {
			entries = append(entries, m)
		}
	default:
		return nil, configErrorf(testDataKey, "must be a list, got %T", raw)
	}

	fixtures := make([]Fixture, 0, len(entries))
	for i, entry := range entries {
		f, err := parseFixture(i, entry)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

func parseFixture(index int, entry interface{}) (Fixture, error) {
	key := fmt.Sprintf("%s[%d]", testDataKey, index)
	fields, ok := asObject(entry)
	if !ok {
		return Fixture{}, configErrorf(key, "must be an object, got %T", entry)
	}

	name, err := requireString(fields, key, "name")
	if err != nil {
		return Fixture{}, err
	}
	label, err := requireString(fields, key, "type")
	if err != nil {
		return Fixture{}, err
	}
	rawExotic, found := lookup(fields, "isExotic")
	if !found {
		return Fixture{}, configErrorf(key+".isExotic", "is required (use null for no value)")
	}
	exotic := ldvalue.Null()
	switch x := rawExotic.(type) {
	case nil:
	case bool:
		exotic = ldvalue.Bool(x)
	default:
		return Fixture{}, configErrorf(key+".isExotic", "must be a boolean or null, got %T", rawExotic)
	}

	return Fixture{Index: index, Name: name, CategoryLabel: label, IsExotic: exotic}, nil
}

func asObject(entry interface{}) (map[string]interface{}, bool) {
	switch m := entry.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	}
	return nil, false
}

// lookup ignores case, because viper lowercases keys in some code paths and not in others.
func lookup(fields map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	for k, v := range fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func requireString(fields map[string]interface{}, key, name string) (string, error) {
	v, found := lookup(fields, name)
	if !found || v == nil {
		return "", configErrorf(key+"."+name, "is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", configErrorf(key+"."+name, "must be a string, got %T", v)
	}
	return s, nil
}

// Package category translates the free-text category labels used in test data into the
// canonical codes that the catalog API expects.
package category

import "github.com/ibs-qa/food-contract-tests/servicedef"

// Default is the mapping used for the Russian-language test data. Any label it does not know
// becomes VEGETABLE.
var Default = NewMapping(map[string]servicedef.CategoryCode{
	"Фрукт": servicedef.CategoryFruit,
	"Овощ":  servicedef.CategoryVegetable,
}, servicedef.CategoryVegetable)

// Mapping is a fixed table of label -> code with a fallback for unmapped labels.
type Mapping struct {
	codes    map[string]servicedef.CategoryCode
	fallback servicedef.CategoryCode
}

// NewMapping copies codes, so later changes to the caller's map have no effect.
func NewMapping(codes map[string]servicedef.CategoryCode, fallback servicedef.CategoryCode) Mapping {
	m := Mapping{codes: make(map[string]servicedef.CategoryCode, len(codes)), fallback: fallback}
	for label, code := range codes {
		m.codes[label] = code
	}
	return m
}

// Normalize returns the code for label, or the fallback code if the label is not mapped.
// Labels are matched exactly.
func (m Mapping) Normalize(label string) servicedef.CategoryCode {
	if code, ok := m.codes[label]; ok {
		return code
	}
	return m.fallback
}

// Known reports whether label has its own entry rather than using the fallback.
func (m Mapping) Known(label string) bool {
	_, ok := m.codes[label]
	return ok
}

func (m Mapping) Fallback() servicedef.CategoryCode {
	return m.fallback
}

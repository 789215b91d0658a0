package servicedef

import (
	"encoding/json"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	FoodPath      = "/api/food"
	DataResetPath = "/api/data/reset"
)

// CategoryCode is the canonical category value the catalog API accepts in the "type" field.
type CategoryCode string

const (
	CategoryFruit     CategoryCode = "FRUIT"
	CategoryVegetable CategoryCode = "VEGETABLE"
)

// FoodItem is one element of the catalog, as sent to POST /api/food and returned by GET /api/food.
//
// Exotic is a JSON boolean, or null if the item has no exotic flag.
type FoodItem struct {
	Name   string        `json:"name"`
	Type   CategoryCode  `json:"type"`
	Exotic ldvalue.Value `json:"exotic"`
}

// Equal compares two items field by field. Exotic values are compared by JSON value, so a missing
// flag and an explicit null are the same.
func (f FoodItem) Equal(other FoodItem) bool {
	return f.Name == other.Name && f.Type == other.Type && f.Exotic.Equal(other.Exotic)
}

func (f FoodItem) String() string {
	data, _ := json.Marshal(f)
	return string(data)
}

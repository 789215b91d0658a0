package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/ibs-qa/food-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxBodySnippet = 500

// Response is a fully read HTTP response from the service.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Items decodes the body as a JSON array of food items.
func (r *Response) Items() ([]servicedef.FoodItem, error) {
	if v := ldvalue.Parse(r.Body); v.Type() != ldvalue.ArrayType {
		return nil, fmt.Errorf("response body is not a JSON array: %s", r.bodySnippet())
	}
	var items []servicedef.FoodItem
	if err := json.Unmarshal(r.Body, &items); err != nil {
		return nil, fmt.Errorf("response body is not a list of food items: %w", err)
	}
	if items == nil {
		items = []servicedef.FoodItem{}
	}
	return items, nil
}

func (r *Response) String() string {
	return fmt.Sprintf("HTTP %d from %s %s, body: %s", r.StatusCode, r.Method, r.URL, r.bodySnippet())
}

func (r *Response) bodySnippet() string {
	if len(r.Body) == 0 {
		return "<empty>"
	}
	if len(r.Body) > maxBodySnippet {
		n := maxBodySnippet
		for n > 0 && !utf8.RuneStart(r.Body[n]) {
			n--
		}
		return string(r.Body[:n]) + "..."
	}
	return string(r.Body)
}

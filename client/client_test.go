package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ibs-qa/food-contract-tests/framework"
	"github.com/ibs-qa/food-contract-tests/servicedef"

	"github.com/google/uuid"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func jsonHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return h
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	c, err := NewClient(server.URL, time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com", time.Second)
	assert.Error(t, err)

	_, err = NewClient("://nope", time.Second)
	assert.Error(t, err)
}

func TestListFood(t *testing.T) {
	body := []byte(`[{"name":"Яблоко","type":"FRUIT","exotic":false},{"name":"Манго","type":"FRUIT","exotic":null}]`)
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithResponse(200, jsonHeaders(), body))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server)

		resp, err := c.ListFood(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		items, err := resp.Items()
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.True(t, items[0].Equal(servicedef.FoodItem{Name: "Яблоко", Type: servicedef.CategoryFruit, Exotic: ldvalue.Bool(false)}))
		assert.True(t, items[1].Exotic.IsNull())

		req := <-requests
		assert.Equal(t, http.MethodGet, req.Request.Method)
		assert.Equal(t, servicedef.FoodPath, req.Request.URL.Path)
		assert.Equal(t, "application/json", req.Request.Header.Get("Accept"))
		_, err = uuid.Parse(req.Request.Header.Get(RequestIDHeader))
		assert.NoError(t, err)
	})
}

func TestAddFoodSendsJSONBody(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server)

		item := servicedef.FoodItem{Name: "Банан", Type: servicedef.CategoryFruit, Exotic: ldvalue.Bool(false)}
		resp, err := c.AddFood(context.Background(), nil, item)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		req := <-requests
		assert.Equal(t, http.MethodPost, req.Request.Method)
		assert.Equal(t, servicedef.FoodPath, req.Request.URL.Path)
		assert.Equal(t, "application/json", req.Request.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"name":"Банан","type":"FRUIT","exotic":false}`, string(req.Body))
	})
}

func TestResetData(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server)

		_, err := c.ResetData(context.Background(), nil)
		require.NoError(t, err)

		req := <-requests
		assert.Equal(t, http.MethodPost, req.Request.Method)
		assert.Equal(t, servicedef.DataResetPath, req.Request.URL.Path)
	})
}

func TestRequestIDsAreUnique(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server)
		for i := 0; i < 2; i++ {
			_, err := c.ListFood(context.Background(), nil)
			require.NoError(t, err)
		}
		first, second := <-requests, <-requests
		assert.NotEqual(t, first.Request.Header.Get(RequestIDHeader), second.Request.Header.Get(RequestIDHeader))
	})
}

func TestNetworkErrorNamesRequest(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	c, err := NewClient(url, time.Second)
	require.NoError(t, err)
	_, err = c.ListFood(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "GET "+url+servicedef.FoodPath+": "), err.Error())
}

func TestClientLogsRequests(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		logger := &framework.CapturingLogger{}
		c := newTestClient(t, server).WithLogger(logger)

		_, err := c.ResetData(context.Background(), nil)
		require.NoError(t, err)

		output := logger.Output()
		require.Len(t, output, 2)
		assert.Contains(t, output[0].Message, "POST "+server.URL+servicedef.DataResetPath)
		assert.Contains(t, output[1].Message, "returned HTTP 200")
	})
}

// sessionHandler assigns a session cookie on the first request that arrives without one, and
// echoes back the session cookie each request carried.
func sessionHandler(seen chan<- string) http.Handler {
	count := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		cookie, err := r.Cookie("SESSION")
		if err != nil {
			count++
			http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: "s" + string(rune('0'+count)), Path: "/"})
			seen <- ""
		} else {
			seen <- cookie.Value
		}
		w.WriteHeader(200)
	})
}

func TestSessionCarriesCookies(t *testing.T) {
	seen := make(chan string, 10)
	httphelpers.WithServer(sessionHandler(seen), func(server *httptest.Server) {
		c := newTestClient(t, server)
		session, err := c.NewSession()
		require.NoError(t, err)
		defer session.Close()

		for i := 0; i < 3; i++ {
			_, err := c.ListFood(context.Background(), session)
			require.NoError(t, err)
		}
		assert.Equal(t, "", <-seen)
		assert.Equal(t, "s1", <-seen)
		assert.Equal(t, "s1", <-seen)
		require.Len(t, session.Cookies(), 1)
		assert.Equal(t, "s1", session.Cookies()[0].Value)
	})
}

func TestSessionsAreIndependent(t *testing.T) {
	seen := make(chan string, 10)
	httphelpers.WithServer(sessionHandler(seen), func(server *httptest.Server) {
		c := newTestClient(t, server)
		first, err := c.NewSession()
		require.NoError(t, err)
		second, err := c.NewSession()
		require.NoError(t, err)
		assert.NotEqual(t, first.ID(), second.ID())

		_, err = c.ListFood(context.Background(), first)
		require.NoError(t, err)
		_, err = c.ListFood(context.Background(), second)
		require.NoError(t, err)
		_, err = c.ListFood(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"", "", ""}, []string{<-seen, <-seen, <-seen})
		assert.Equal(t, "s1", first.Cookies()[0].Value)
		assert.Equal(t, "s2", second.Cookies()[0].Value)
	})
}

func TestClosedSessionRefusesRequests(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server)
		session, err := c.NewSession()
		require.NoError(t, err)
		session.Close()
		session.Close()

		assert.True(t, session.Closed())
		_, err = c.AddFood(context.Background(), session, servicedef.FoodItem{Name: "x"})
		assert.True(t, errors.Is(err, ErrSessionClosed))
		assert.Len(t, requests, 0)
	})
}

func TestItemsRejectsNonArray(t *testing.T) {
	for _, body := range []string{`{"name":"x"}`, `not json`, ``, `"text"`} {
		resp := &Response{StatusCode: 200, Body: []byte(body)}
		_, err := resp.Items()
		assert.Error(t, err, "body %q", body)
	}
}

func TestItemsOfEmptyArray(t *testing.T) {
	resp := &Response{StatusCode: 200, Body: []byte(`[]`)}
	items, err := resp.Items()
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Len(t, items, 0)
}

func TestResponseStringTruncatesBody(t *testing.T) {
	long, _ := json.Marshal(strings.Repeat("я", 400))
	resp := &Response{StatusCode: 500, Method: "GET", URL: "http://x/api/food", Body: long}
	s := resp.String()
	assert.True(t, strings.HasPrefix(s, "HTTP 500 from GET http://x/api/food, body: "))
	assert.True(t, strings.HasSuffix(s, "..."))
	assert.Less(t, len(s), len(long))

	empty := &Response{StatusCode: 204, Method: "POST", URL: "http://x"}
	assert.Contains(t, empty.String(), "<empty>")
}

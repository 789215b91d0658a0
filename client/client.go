package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ibs-qa/food-contract-tests/framework"
	"github.com/ibs-qa/food-contract-tests/servicedef"

	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	jsonContentType = "application/json"
)

// Client sends requests to the food catalog service under test. It holds no per-run state; anything
// that must persist between the calls of one workflow run lives in a Session.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     framework.Logger
}

// NewClient creates a Client for the service at baseURL. Every call fails if it has not completed
// within timeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid service URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid service URL %q: scheme must be http or https", baseURL)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		logger:     framework.NullLogger(),
	}, nil
}

// WithLogger returns a copy of the Client that logs every request and response to logger. The
// copy shares the underlying connection pool.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	c1 := *c
	c1.logger = logger
	return &c1
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// NewSession creates an empty session whose cookies are scoped to this client's service.
func (c *Client) NewSession() (*Session, error) {
	return newSession(c.baseURL)
}

// ListFood queries GET /api/food.
func (c *Client) ListFood(ctx context.Context, session *Session) (*Response, error) {
	return c.do(ctx, session, http.MethodGet, servicedef.FoodPath, nil)
}

// AddFood sends item as the JSON body of POST /api/food.
func (c *Client) AddFood(ctx context.Context, session *Session, item servicedef.FoodItem) (*Response, error) {
	return c.do(ctx, session, http.MethodPost, servicedef.FoodPath, item)
}

// ResetData asks the service to restore its baseline data set with POST /api/data/reset.
func (c *Client) ResetData(ctx context.Context, session *Session) (*Response, error) {
	return c.do(ctx, session, http.MethodPost, servicedef.DataResetPath, nil)
}

// CloseIdleConnections releases pooled connections. The Client can still be used afterward.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// do sends one request. A nil session sends no cookies and keeps none of the cookies the service
// returns.
func (c *Client) do(ctx context.Context, session *Session, method, path string, body interface{}) (*Response, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: c.baseURL.Path + path})
	describe := method + " " + target.String()

	if session != nil && session.Closed() {
		return nil, fmt.Errorf("%s: %w", describe, ErrSessionClosed)
	}

	var bodyData []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: cannot encode request body: %w", describe, err)
		}
		bodyData = data
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(bodyData))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", jsonContentType)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", jsonContentType)
	}
	if session != nil {
		session.attach(req)
	}

	if bodyData != nil {
		c.logger.Printf("%s [%s] %s", describe, requestID, string(bodyData))
	} else {
		c.logger.Printf("%s [%s]", describe, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("%s [%s] failed: %s", describe, requestID, err)
		return nil, fmt.Errorf("%s: %w", describe, err)
	}
	defer resp.Body.Close()
	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: error reading response body: %w", describe, err)
	}
	if session != nil {
		session.store(resp)
	}

	result := &Response{
		Method:     method,
		URL:        target.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respData,
		Duration:   time.Since(start),
	}
	c.logger.Printf("%s [%s] returned HTTP %d in %s: %s",
		describe, requestID, result.StatusCode, result.Duration.Round(time.Millisecond), result.bodySnippet())
	return result, nil
}

// ErrSessionClosed is returned when a request is made with a session that has already been closed.
var ErrSessionClosed = errors.New("session is closed")

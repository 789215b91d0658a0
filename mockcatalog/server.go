// Package mockcatalog is an in-process fake of the food catalog API. It exists so the harness's
// own tests can run workflows without a real service.
package mockcatalog

import (
	"net/http"
	"sync"

	"github.com/ibs-qa/food-contract-tests/servicedef"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const DefaultSessionCookie = "JSESSIONID"

// DefaultBaseline returns the four items the catalog holds after a reset.
func DefaultBaseline() []servicedef.FoodItem {
	return []servicedef.FoodItem{
		{Name: "Апельсин", Type: servicedef.CategoryFruit, Exotic: ldvalue.Bool(true)},
		{Name: "Капуста", Type: servicedef.CategoryVegetable, Exotic: ldvalue.Bool(false)},
		{Name: "Помидор", Type: servicedef.CategoryVegetable, Exotic: ldvalue.Bool(true)},
		{Name: "Яблоко", Type: servicedef.CategoryFruit, Exotic: ldvalue.Bool(false)},
	}
}

type Options struct {
	// Baseline is the data set restored by a reset. Nil means DefaultBaseline.
	Baseline []servicedef.FoodItem

	// SessionCookie is the name of the cookie that identifies a session. Empty means
	// DefaultSessionCookie.
	SessionCookie string

	// IsolateSessions gives every session its own copy of the data set. Requests that carry no
	// session cookie then always see a fresh baseline.
	IsolateSessions bool
}

// RecordedRequest describes one request the server handled.
type RecordedRequest struct {
	Method    string
	Path      string
	SessionID string
	RequestID string
}

type override struct {
	status int
	body   string
}

// Server holds the catalog state. It is safe for concurrent use.
type Server struct {
	opts      Options
	engine    *gin.Engine
	shared    []servicedef.FoodItem
	sessions  map[string][]servicedef.FoodItem
	overrides map[string]override
	requests  []RecordedRequest
	lock      sync.Mutex
}

func New(opts Options) *Server {
	if opts.Baseline == nil {
		opts.Baseline = DefaultBaseline()
	}
	if opts.SessionCookie == "" {
		opts.SessionCookie = DefaultSessionCookie
	}
	s := &Server{
		opts:      opts,
		shared:    copyItems(opts.Baseline),
		sessions:  make(map[string][]servicedef.FoodItem),
		overrides: make(map[string]override),
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.sessionMiddleware, s.overrideMiddleware)
	engine.GET(servicedef.FoodPath, s.listFood)
	engine.POST(servicedef.FoodPath, s.addFood)
	engine.POST(servicedef.DataResetPath, s.resetData)
	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Items returns the current contents of the shared data set.
func (s *Server) Items() []servicedef.FoodItem {
	s.lock.Lock()
	defer s.lock.Unlock()
	return copyItems(s.shared)
}

// SetItems replaces the shared data set, for example to simulate state left behind by an
// earlier run.
func (s *Server) SetItems(items []servicedef.FoodItem) {
	s.lock.Lock()
	s.shared = copyItems(items)
	s.lock.Unlock()
}

// Requests returns every request handled so far, in order.
func (s *Server) Requests() []RecordedRequest {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Override makes every request for method and path return status and body instead of being
// handled normally, until ClearOverrides is called.
func (s *Server) Override(method, path string, status int, body string) {
	s.lock.Lock()
	s.overrides[method+" "+path] = override{status: status, body: body}
	s.lock.Unlock()
}

func (s *Server) ClearOverrides() {
	s.lock.Lock()
	s.overrides = make(map[string]override)
	s.lock.Unlock()
}

const sessionKey = "mockcatalog.session"

func (s *Server) sessionMiddleware(c *gin.Context) {
	sessionID, err := c.Cookie(s.opts.SessionCookie)
	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()
		http.SetCookie(c.Writer, &http.Cookie{Name: s.opts.SessionCookie, Value: sessionID, Path: "/", HttpOnly: true})
	}
	c.Set(sessionKey, sessionID)

	s.lock.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		SessionID: sessionID,
		RequestID: c.GetHeader("X-Request-ID"),
	})
	s.lock.Unlock()
	c.Next()
}

func (s *Server) overrideMiddleware(c *gin.Context) {
	s.lock.Lock()
	o, ok := s.overrides[c.Request.Method+" "+c.Request.URL.Path]
	s.lock.Unlock()
	if ok {
		c.Data(o.status, "application/json", []byte(o.body))
		c.Abort()
		return
	}
	c.Next()
}

// data returns a pointer to the data set this request operates on. The caller must hold the lock.
func (s *Server) data(c *gin.Context) *[]servicedef.FoodItem {
	if !s.opts.IsolateSessions {
		return &s.shared
	}
	sessionID := c.GetString(sessionKey)
	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = copyItems(s.opts.Baseline)
	}
	items := s.sessions[sessionID]
	return &items
}

func (s *Server) save(c *gin.Context, items []servicedef.FoodItem) {
	if s.opts.IsolateSessions {
		s.sessions[c.GetString(sessionKey)] = items
	} else {
		s.shared = items
	}
}

func (s *Server) listFood(c *gin.Context) {
	s.lock.Lock()
	items := copyItems(*s.data(c))
	s.lock.Unlock()
	c.JSON(http.StatusOK, items)
}

type addFoodRequest struct {
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Exotic ldvalue.Value `json:"exotic"`
}

func (s *Server) addFood(c *gin.Context) {
	var req addFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	code := servicedef.CategoryCode(req.Type)
	if code != servicedef.CategoryFruit && code != servicedef.CategoryVegetable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown type " + req.Type})
		return
	}

	s.lock.Lock()
	items := append(copyItems(*s.data(c)), servicedef.FoodItem{Name: req.Name, Type: code, Exotic: req.Exotic})
	s.save(c, items)
	s.lock.Unlock()
	c.Status(http.StatusOK)
}

func (s *Server) resetData(c *gin.Context) {
	s.lock.Lock()
	s.save(c, copyItems(s.opts.Baseline))
	s.lock.Unlock()
	c.Status(http.StatusOK)
}

func copyItems(items []servicedef.FoodItem) []servicedef.FoodItem {
	return append(make([]servicedef.FoodItem, 0, len(items)), items...)
}

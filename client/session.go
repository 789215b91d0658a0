package client

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// Session carries the cookies the service assigns during one workflow run, so that the service
// sees all of the run's requests as one logical interaction. A Session belongs to a single run
// and is closed when the run ends.
type Session struct {
	id      string
	baseURL *url.URL
	jar     *cookiejar.Jar
	closed  bool
	lock    sync.Mutex
}

func newSession(baseURL *url.URL) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Session{id: uuid.NewString(), baseURL: baseURL, jar: jar}, nil
}

// ID identifies the session in debug output. It is never sent to the service.
func (s *Session) ID() string {
	return s.id
}

// Cookies returns the cookies that would be sent with the next request.
func (s *Session) Cookies() []*http.Cookie {
	return s.jar.Cookies(s.baseURL)
}

// Close discards the session's cookies. Any later request made with the session fails with
// ErrSessionClosed.
func (s *Session) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if jar, err := cookiejar.New(nil); err == nil {
		s.jar = jar
	}
}

func (s *Session) Closed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}

func (s *Session) attach(req *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, cookie := range s.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
}

func (s *Session) store(resp *http.Response) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return
	}
	if cookies := resp.Cookies(); len(cookies) > 0 {
		s.jar.SetCookies(resp.Request.URL, cookies)
	}
}

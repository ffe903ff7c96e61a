package testkit

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	uhttp "github.com/shashiranjanraj/uniformhub/pkg/http"
)

// MockTransport answers outbound requests made through pkg/http from a
// list of URL-prefix stubs. Unmatched requests fail.
type MockTransport struct {
	mu    sync.Mutex
	stubs []*stub
}

type stub struct {
	prefix string
	match  func(*http.Request) bool
	status int
	body   string
	calls  int
}

func NewMockTransport() *MockTransport { return &MockTransport{} }

// On answers requests whose URL starts with prefix.
func (m *MockTransport) On(prefix string, status int, body string) *MockTransport {
	return m.OnFunc(prefix, nil, status, body)
}

// OnFunc is On with an extra predicate, e.g. to match a form field.
func (m *MockTransport) OnFunc(prefix string, match func(*http.Request) bool, status int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, &stub{prefix: prefix, match: match, status: status, body: body})
	return m
}

// Install swaps the shared client's transport until t finishes.
func (m *MockTransport) Install(t testing.TB) *MockTransport {
	uhttp.DefaultClient.Transport = m
	t.Cleanup(uhttp.ResetTransport)
	return m
}

// Calls reports how many requests hit stubs registered under prefix.
func (m *MockTransport) Calls(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.stubs {
		if s.prefix == prefix {
			n += s.calls
		}
	}
	return n
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stubs {
		if !strings.HasPrefix(req.URL.String(), s.prefix) {
			continue
		}
		if s.match != nil && !s.match(req) {
			continue
		}
		s.calls++
		return &http.Response{
			StatusCode: s.status,
			Status:     fmt.Sprintf("%d %s", s.status, http.StatusText(s.status)),
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(strings.NewReader(s.body)),
			Request:    req,
		}, nil
	}
	return nil, fmt.Errorf("testkit: unexpected request %s %s", req.Method, req.URL)
}

package testkit

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// Client drives an http.Handler in-process. A non-empty Token is sent as
// a Bearer header.
type Client struct {
	t       testing.TB
	handler http.Handler
	Token   string
}

func NewClient(t testing.TB, h http.Handler) *Client {
	return &Client{t: t, handler: h}
}

// As returns a copy of c that authenticates with token.
func (c *Client) As(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

// Response is a recorded reply with the envelope already decoded.
type Response struct {
	Code    int               `json:"-"`
	Header  http.Header       `json:"-"`
	Body    []byte            `json:"-"`
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Decode unmarshals the envelope's data into dest.
func (r *Response) Decode(t testing.TB, dest any) {
	t.Helper()
	require.NotEmpty(t, r.Data, "response has no data: %s", r.Body)
	require.NoError(t, json.Unmarshal(r.Data, dest))
}

// Do sends body (JSON-encoded unless nil) and records the reply.
func (c *Client) Do(method, path string, body any) *Response {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *Client) Get(path string) *Response { return c.Do(http.MethodGet, path, nil) }
func (c *Client) Post(path string, body any) *Response { return c.Do(http.MethodPost, path, body) }
func (c *Client) Put(path string, body any) *Response { return c.Do(http.MethodPut, path, body) }
func (c *Client) Delete(path string) *Response { return c.Do(http.MethodDelete, path, nil) }

// Upload posts content as the multipart field "file".
func (c *Client) Upload(path, filename string, content []byte) *Response {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = fw.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

func (c *Client) send(req *http.Request) *Response {
	c.t.Helper()
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	res := &Response{Code: rec.Code, Header: rec.Header(), Body: rec.Body.Bytes()}
	if bytes.HasPrefix(bytes.TrimSpace(res.Body), []byte("{")) {
		_ = json.Unmarshal(res.Body, res)
	}
	return res
}

package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	appctx "github.com/shashiranjanraj/uniformhub/pkg/ctx"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

func serve(h appctx.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestSuccessEnvelope(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":{"id":1}}`, rec.Body.String())
}

func TestBindJSONWrites422(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"bad"}`))
	rec := serve(func(c *appctx.Context) {
		var in struct {
			Email string `json:"email" validate:"required,email"`
		}
		if !c.BindJSON(&in) {
			return
		}
		t.Error("expected BindJSON to fail")
	}, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email"`)
}

func TestBindJSONWrites400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	rec := serve(func(c *appctx.Context) {
		var in struct{}
		assert.False(t, c.BindJSON(&in))
	}, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	var got uint
	r.Get("/shops/{id}", appctx.Wrap(func(c *appctx.Context) {
		id, ok := c.ParamUint("id")
		if !ok {
			return
		}
		got = id
		c.NoContent()
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shops/12", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint(12), got)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shops/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?school=4&min_price=250&page=2&per_page=5&max_price=x", nil)
	serve(func(c *appctx.Context) {
		assert.Equal(t, uint(4), c.QueryUint("school"))
		n, ok := c.QueryInt64("min_price")
		assert.True(t, ok)
		assert.Equal(t, int64(250), n)
		_, ok = c.QueryInt64("max_price")
		assert.False(t, ok)
		assert.Equal(t, orm.PageRequest{Page: 2, PerPage: 5}, c.Page())
	}, req)
}

func TestPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	serve(func(c *appctx.Context) { assert.Nil(t, c.Principal()) }, req)

	p := &auth.Principal{UserID: 2}
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	serve(func(c *appctx.Context) { assert.Same(t, p, c.Principal()) }, req)
}

func TestClientIPIgnoresForwardingHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	req.Header.Set("X-Real-Ip", "10.0.0.3")
	serve(func(c *appctx.Context) { assert.Equal(t, "192.168.1.5", c.ClientIP()) }, req)
}

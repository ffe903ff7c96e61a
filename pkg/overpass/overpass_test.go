package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountiesPostsQueryAndDecodes(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm.Get("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"elements":[{"type":"relation","id":88,"tags":{"name":"Kent","name:en":"Kent County"}}]}`))
	}))
	defer srv.Close()

	els, err := New(srv.URL).Counties(context.Background(), "gb")
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, int64(88), els[0].ID)
	assert.Equal(t, "Kent County", els[0].Name())
	assert.Contains(t, got, `"ISO3166-1"="GB"`)
	assert.Contains(t, got, `"admin_level"="6"`)
}

func TestCountiesRejectsBadCountry(t *testing.T) {
	_, err := New("http://unused").Counties(context.Background(), "GBR")
	assert.Error(t, err)
}

func TestQueryRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		_, _ = w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	els, err := New(srv.URL).WithRetry(2, time.Millisecond).Schools(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, els)
	assert.Equal(t, 2, calls)
}

func TestElementAddress(t *testing.T) {
	e := Element{Tags: map[string]string{
		"addr:housenumber": "12", "addr:street": "High Street",
		"addr:city": "Canterbury", "addr:postcode": "CT1 2AA",
		"contact:website": "https://school.example",
	}}
	assert.Equal(t, "12 High Street, Canterbury, CT1 2AA", e.Address())
	assert.Equal(t, "https://school.example", e.Website())
}

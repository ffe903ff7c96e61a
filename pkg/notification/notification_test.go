package notification

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pending struct{ email string }

func (pending) Via() []string { return []string{"slack"} }

func (p pending) ToSlack() SlackData {
	return SlackData{Text: "New signup awaiting approval: " + p.email}
}

type mailOnly struct{}

func (mailOnly) Via() []string { return []string{"slack"} }

func TestSendSlack(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	errs := New(srv.URL).Send(context.Background(), pending{email: "ada@example.com"})
	require.Empty(t, errs)
	assert.JSONEq(t, `{"text":"New signup awaiting approval: ada@example.com"}`, body)
}

func TestUnconfiguredSlackIsSkipped(t *testing.T) {
	assert.Empty(t, New("").Send(context.Background(), pending{}))
}

func TestMissingChannelImplementation(t *testing.T) {
	errs := New("http://127.0.0.1:1").Send(context.Background(), mailOnly{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "does not implement Slackable")
}

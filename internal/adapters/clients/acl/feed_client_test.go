package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

func newTestFeed(t *testing.T, handler http.HandlerFunc, opts ...func(*FeedClientConfig)) *FeedClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(testConfig(server.URL))
	require.NoError(t, err)

	cfg := FeedClientConfig{Client: client, ServiceName: "quote-feed", Path: "/posts"}
	for _, opt := range opts {
		opt(&cfg)
	}

	return NewFeedClient(cfg)
}

func posts(n int) string {
	recs := make([]feedRecord, 0, n)
	for i := 1; i <= n; i++ {
		recs = append(recs, feedRecord{ID: i, UserID: 1, Title: fmt.Sprintf("title %d", i), Body: "quia et suscipit recusandae"})
	}

	b, _ := json.Marshal(recs)

	return string(b)
}

func TestNewFeedClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() { NewFeedClient(FeedClientConfig{}) })
}

func TestFeedClient_FetchQuotes_LimitAndTranslate(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)
		_, _ = w.Write([]byte(posts(100)))
	})

	quotes, err := feed.FetchQuotes(context.Background())

	require.NoError(t, err)
	require.Len(t, quotes, DefaultFetchLimit)
	assert.Equal(t, domain.Quote{Text: "title 1", Category: "quia et su"}, quotes[0])
	assert.Equal(t, "title 10", quotes[9].Text)
}

func TestFeedClient_FetchQuotes_CustomLimitAndPrefix(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(posts(5)))
	}, func(c *FeedClientConfig) {
		c.FetchLimit = 2
		c.CategoryPrefix = 4
	})

	quotes, err := feed.FetchQuotes(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Quote{
		{Text: "title 1", Category: "quia"},
		{Text: "title 2", Category: "quia"},
	}, quotes)
}

func TestFeedClient_FetchQuotes_EdgeRecords(t *testing.T) {
	body := `[
		{"title":"  ","body":"ignored"},
		{"title":"no body","body":""},
		{"title":"short","body":"abc"},
		{"title":"unicode","body":"ééééééééééééé"}
	]`
	feed := newTestFeed(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	quotes, err := feed.FetchQuotes(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Quote{
		{Text: "no body", Category: domain.DefaultCategory},
		{Text: "short", Category: "abc"},
		{Text: "unicode", Category: strings.Repeat("é", 10)},
	}, quotes)
}

func TestFeedClient_FetchQuotes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(error) bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			check: domain.IsUnavailable,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"not":"a list"}`))
			},
			check: domain.IsUnavailable,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			check: domain.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := newTestFeed(t, tt.handler)

			quotes, err := feed.FetchQuotes(context.Background())

			require.Error(t, err)
			assert.Nil(t, quotes)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestFeedClient_PushQuotes(t *testing.T) {
	var received []pushRecord

	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	})

	err := feed.PushQuotes(context.Background(), []domain.Quote{
		{Text: "a", Category: "x"},
		{Text: "b", Category: "y"},
	})

	require.NoError(t, err)
	assert.Equal(t, []pushRecord{{Text: "a", Category: "x"}, {Text: "b", Category: "y"}}, received)
}

func TestFeedClient_PushQuotes_EmptySetSendsArray(t *testing.T) {
	var raw string

	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, feed.PushQuotes(context.Background(), nil))
	assert.Equal(t, "[]", raw)
}

func TestFeedClient_PushQuotes_Failure(t *testing.T) {
	var calls int32

	feed := newTestFeed(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := feed.PushQuotes(context.Background(), []domain.Quote{{Text: "a", Category: "x"}})

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "single attempt per push")
}

func TestFeedClient_HealthCheck(t *testing.T) {
	healthy := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("_limit"))
		_, _ = w.Write([]byte(posts(1)))
	})
	assert.Equal(t, "quote-feed", healthy.Name())
	assert.NoError(t, healthy.Check(context.Background()))

	broken := newTestFeed(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	assert.Error(t, broken.Check(context.Background()))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "abcdefghij", truncateRunes("abcdefghijkl", 10))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
	assert.Empty(t, truncateRunes("", 3))
}

func TestFeedClient_Circuit(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, _ = feed.FetchQuotes(context.Background())

	snap := feed.Circuit()
	assert.Equal(t, clients.StateClosed, snap.State)
	assert.Equal(t, 1, snap.Failures)
}

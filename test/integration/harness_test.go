//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	httpadapter "github.com/jsamuelsen/quotekeeper/internal/adapters/http"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotekeeper/internal/bootstrap"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
)

// fakeFeed stands in for the remote create/list endpoint.
type fakeFeed struct {
	server *httptest.Server

	mu      sync.Mutex
	records []feedRecord
	down    bool
	pushes  int
	pushed  []map[string]string
}

type feedRecord struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func newFakeFeed() *fakeFeed {
	f := &fakeFeed{}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))

	return f
}

func (f *fakeFeed) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		f.pushes++
		f.pushed = nil
		_ = json.NewDecoder(r.Body).Decode(&f.pushed)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	default:
		_ = json.NewEncoder(w).Encode(f.records)
	}
}

func (f *fakeFeed) setRecords(records []feedRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.records = records
}

func (f *fakeFeed) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.down = down
}

func (f *fakeFeed) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pushes
}

func (f *fakeFeed) lastPush() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pushed
}

func (f *fakeFeed) close() {
	f.server.Close()
}

// service is an in-process quotekeeper instance backed by memory storage.
type service struct {
	server     *httptest.Server
	feed       *fakeFeed
	components *bootstrap.Components
}

func startService(ctx context.Context) (*service, error) {
	gin.SetMode(gin.TestMode)

	feed := newFakeFeed()

	cfg, err := config.LoadFrom("testdata", "")
	if err != nil {
		feed.close()
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg.App.Environment = "test"
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Services.Feed.BaseURL = feed.server.URL
	cfg.Client.Timeout = 2 * time.Second
	cfg.Client.CircuitBreaker.MaxFailures = 100

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	components, err := bootstrap.Build(ctx, cfg, logger, bootstrap.Options{UserAgent: "integration"})
	if err != nil {
		feed.close()
		return nil, err
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.NewDefaultRouterConfig(
		logger,
		&cfg.App,
		handlers.NewHealthHandler(components.Health, handlers.NewBuildInfo("integration", "none", "now")),
		handlers.NewQuoteHandler(components.Service),
		handlers.NewSyncHandler(components.Reconciler, components.Feed),
	))

	return &service{
		server:     httptest.NewServer(engine),
		feed:       feed,
		components: components,
	}, nil
}

func (s *service) close() {
	s.server.Close()
	s.feed.close()
	_ = s.components.Close()
}

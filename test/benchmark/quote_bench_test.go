package benchmark

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httpadapter "github.com/jsamuelsen/quotekeeper/internal/adapters/http"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

func init() {
	// Release mode keeps gin's debug printing out of the measurements.
	gin.SetMode(gin.ReleaseMode)
}

func quotes(n int, category string) []domain.Quote {
	out := make([]domain.Quote, n)
	for i := range out {
		out[i] = domain.Quote{Text: fmt.Sprintf("Quote number %d", i), Category: category}
	}

	return out
}

// BenchmarkMerge measures merging a remote page into collections of growing size.
func BenchmarkMerge(b *testing.B) {
	remote := quotes(10, "remote")

	for _, size := range []int{10, 1_000, 10_000} {
		local := quotes(size, "local")

		b.Run(fmt.Sprintf("local=%d", size), func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				_ = domain.Merge(local, remote)
			}
		})
	}
}

func BenchmarkCountAdded(b *testing.B) {
	before := quotes(1_000, "local")
	after := domain.Merge(before, quotes(10, "remote"))

	b.ReportAllocs()

	for b.Loop() {
		_ = domain.CountAdded(before, after)
	}
}

func BenchmarkPaginate(b *testing.B) {
	all := quotes(1_000, "local")
	req := dto.PaginationRequest{Limit: dto.MaxLimit}

	b.ReportAllocs()

	for b.Loop() {
		if _, err := dto.Paginate(all, "all", req); err != nil {
			b.Fatal(err)
		}
	}
}

// setupRouter serves the full middleware chain over a memory store holding n quotes.
func setupRouter(b *testing.B, n int) *gin.Engine {
	b.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := storage.NewMemoryStore()

	store := app.NewQuoteStore(app.QuoteStoreConfig{KV: kv, Logger: logger})
	if err := store.Load(b.Context()); err != nil {
		b.Fatal(err)
	}

	if err := store.Replace(b.Context(), quotes(n, "bench")); err != nil {
		b.Fatal(err)
	}

	registry := ports.NewHealthRegistry()
	if err := registry.Register(kv); err != nil {
		b.Fatal(err)
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.NewDefaultRouterConfig(
		logger,
		&config.AppConfig{Name: "quotekeeper-bench"},
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z")),
		handlers.NewQuoteHandler(app.NewQuoteService(app.QuoteServiceConfig{Store: store, Logger: logger})),
		nil,
	))

	return engine
}

func serve(b *testing.B, engine *gin.Engine, req *http.Request, want int) {
	b.Helper()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != want {
		b.Fatalf("status %d, want %d: %s", w.Code, want, w.Body.String())
	}
}

// BenchmarkListQuotes measures one page of the listing endpoint.
func BenchmarkListQuotes(b *testing.B) {
	engine := setupRouter(b, 1_000)

	b.ReportAllocs()

	for b.Loop() {
		serve(b, engine, httptest.NewRequest(http.MethodGet, "/api/v1/quotes?category=all&limit=20", http.NoBody), http.StatusOK)
	}
}

func BenchmarkRandomQuote(b *testing.B) {
	engine := setupRouter(b, 1_000)

	b.ReportAllocs()

	for b.Loop() {
		serve(b, engine, httptest.NewRequest(http.MethodGet, "/api/v1/quotes/random?category=bench", http.NoBody), http.StatusOK)
	}
}

// BenchmarkAddQuote includes persisting the whole collection on every add.
func BenchmarkAddQuote(b *testing.B) {
	engine := setupRouter(b, 1_000)

	b.ReportAllocs()

	i := 0
	for b.Loop() {
		i++
		body := strings.NewReader(fmt.Sprintf(`{"text":"added %d","category":"bench"}`, i))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
		req.Header.Set("Content-Type", "application/json")
		serve(b, engine, req, http.StatusCreated)
	}
}

// BenchmarkLiveness is the probe path; it should stay allocation-light.
func BenchmarkLiveness(b *testing.B) {
	engine := setupRouter(b, 0)

	b.ReportAllocs()

	for b.Loop() {
		serve(b, engine, httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody), http.StatusOK)
	}
}

func BenchmarkReadiness(b *testing.B) {
	engine := setupRouter(b, 0)

	b.ReportAllocs()

	for b.Loop() {
		serve(b, engine, httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody), http.StatusOK)
	}
}

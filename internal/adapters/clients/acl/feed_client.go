package acl

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

// Defaults applied when FeedClientConfig leaves a field zero.
const (
	DefaultFeedPath       = "/posts"
	DefaultFetchLimit     = 10
	DefaultCategoryPrefix = 10
)

// FeedClientConfig configures the remote feed adapter.
type FeedClientConfig struct {
	// Client is the HTTP client; its BaseURL points at the feed host.
	Client *clients.Client

	// ServiceName labels errors and the health check.
	ServiceName string

	// Path is the list/create endpoint, e.g. "/posts".
	Path string

	// FetchLimit caps how many remote records one fetch keeps.
	FetchLimit int

	// CategoryPrefix is how many runes of the record body become the category.
	CategoryPrefix int

	Logger *slog.Logger
}

// FeedClient implements ports.RemoteQuoteFeed against a JSON list endpoint
// whose records carry a title and a body.
type FeedClient struct {
	Upstream

	path           string
	fetchLimit     int
	categoryPrefix int
	logger         *slog.Logger
}

// NewFeedClient creates a feed adapter. Panics if Client is nil.
func NewFeedClient(cfg FeedClientConfig) *FeedClient {
	if cfg.Client == nil {
		panic("FeedClient: Client is required")
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "quote-feed"
	}

	if cfg.Path == "" {
		cfg.Path = DefaultFeedPath
	}

	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}

	if cfg.CategoryPrefix <= 0 {
		cfg.CategoryPrefix = DefaultCategoryPrefix
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &FeedClient{
		Upstream:       NewUpstream(cfg.Client, cfg.ServiceName),
		path:           cfg.Path,
		fetchLimit:     cfg.FetchLimit,
		categoryPrefix: cfg.CategoryPrefix,
		logger:         logger.With(slog.String("component", "acl.FeedClient")),
	}
}

// feedRecord is the remote list item. Only title and body are read.
type feedRecord struct {
	ID     int    `json:"id,omitempty"`
	UserID int    `json:"userId,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// pushRecord is what PushQuotes uploads.
type pushRecord struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// FetchQuotes GETs the list endpoint and translates the first FetchLimit
// records. Records with an empty title are dropped.
func (c *FeedClient) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	logging.Trace(ctx, c.logger, "fetching remote records", slog.String("path", c.path))

	body, err := c.Get(ctx, c.path, "fetch quotes")
	if err != nil {
		return nil, err
	}

	records, err := decodeJSON[[]feedRecord](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	items := records
	if len(items) > c.fetchLimit {
		items = items[:c.fetchLimit]
	}

	quotes, skipped := TranslateAll(items, c.translate)
	if skipped > 0 {
		c.logger.DebugContext(ctx, "skipped remote records without title", slog.Int("skipped", skipped))
	}

	logging.Trace(ctx, c.logger, "translated remote records",
		slog.Int("received", len(records)),
		slog.Int("kept", len(quotes)))

	return quotes, nil
}

// PushQuotes POSTs the full local set as a JSON array. The response body is ignored.
func (c *FeedClient) PushQuotes(ctx context.Context, quotes []domain.Quote) error {
	payload := make([]pushRecord, 0, len(quotes))
	for _, q := range quotes {
		payload = append(payload, pushRecord{Text: q.Text, Category: q.Category})
	}

	if err := c.Upstream.PostJSON(ctx, c.path, payload, "push quotes"); err != nil {
		return err
	}

	logging.Trace(ctx, c.logger, "pushed local set", slog.Int("count", len(payload)))

	return nil
}

// translate maps a remote record to a quote: the title becomes the text and
// the first categoryPrefix runes of the body become the category.
func (c *FeedClient) translate(rec *feedRecord) (domain.Quote, error) {
	category := strings.TrimSpace(truncateRunes(strings.TrimSpace(rec.Body), c.categoryPrefix))
	if category == "" {
		category = domain.DefaultCategory
	}

	return domain.NewQuote(rec.Title, category)
}

// Circuit reports the feed client's circuit breaker state.
func (c *FeedClient) Circuit() clients.Snapshot {
	return c.Client().CircuitSnapshot()
}

// Name implements ports.HealthChecker.
func (c *FeedClient) Name() string {
	return c.ServiceName()
}

// Check implements ports.HealthChecker with a one-record list request.
func (c *FeedClient) Check(ctx context.Context) error {
	body, err := c.Get(ctx, c.path+"?_limit=1", "health check")
	if err != nil {
		return err
	}

	return body.Close()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)

	return string(runes[:n])
}

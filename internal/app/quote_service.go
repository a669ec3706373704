// Package app contains application services that orchestrate use cases.
// This is the application layer: it coordinates domain logic and
// infrastructure through ports.
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - Storage encodings (that's the storage adapters)
//   - Core domain logic such as Merge (that's the domain layer)
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

// ExportDateLayout is the date format used in export file names.
const ExportDateLayout = "2006-01-02"

// QuoteService implements the presentation use cases on top of a QuoteStore:
// listing, random pick, add, filter selection, import and export.
type QuoteService struct {
	store  *QuoteStore
	logger *slog.Logger
	intn   func(n int) int
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Store  *QuoteStore
	Logger *slog.Logger

	// Intn returns a number in [0, n). Defaults to math/rand/v2.IntN.
	Intn func(n int) int
}

// ImportResult reports how many records an import accepted and rejected.
type ImportResult struct {
	Imported int `json:"imported"`
	Rejected int `json:"rejected"`
}

// NewQuoteService creates a new quote service. It panics if Store is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("app.NewQuoteService: Store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	intn := cfg.Intn
	if intn == nil {
		intn = rand.IntN
	}

	return &QuoteService{
		store:  cfg.Store,
		logger: logger.With(slog.String("component", "app.QuoteService")),
		intn:   intn,
	}
}

// List returns the quotes filed under category. An empty category uses the
// persisted filter selection.
func (s *QuoteService) List(category string) []domain.Quote {
	if category == "" {
		category = s.store.SelectedCategory()
	}

	return domain.FilterByCategory(s.store.List(), category)
}

// RandomQuote picks one quote from the filtered set.
// Returns a NotFoundError when the category has no quotes.
func (s *QuoteService) RandomQuote(ctx context.Context, category string) (domain.Quote, error) {
	if category == "" {
		category = s.store.SelectedCategory()
	}

	candidates := domain.FilterByCategory(s.store.List(), category)
	if len(candidates) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote in category", category)
	}

	q := candidates[s.intn(len(candidates))]
	logging.Trace(ctx, s.logger, "picked random quote",
		slog.String("category", category),
		slog.Int("candidates", len(candidates)),
	)

	return q, nil
}

// AddQuote validates and appends a new quote.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := domain.NewQuote(text, category)
	if err != nil {
		return domain.Quote{}, err
	}

	if err := s.store.Add(ctx, q); err != nil {
		s.logger.ErrorContext(ctx, "failed to add quote", slog.Any("error", err))
		return domain.Quote{}, err
	}

	s.logger.InfoContext(ctx, "added quote", slog.String("category", q.Category))

	return q, nil
}

// Categories returns the distinct categories in first-seen order.
func (s *QuoteService) Categories() []string {
	return domain.Categories(s.store.List())
}

// Filter returns the last-selected category.
func (s *QuoteService) Filter() string {
	return s.store.SelectedCategory()
}

// SetFilter persists the selected category. Unknown categories are accepted.
func (s *QuoteService) SetFilter(ctx context.Context, category string) (string, error) {
	if err := s.store.SetSelectedCategory(ctx, category); err != nil {
		return "", err
	}

	return s.store.SelectedCategory(), nil
}

// Import reads a JSON array of quotes from r and replaces the collection
// with the valid records. Records that are not objects with non-empty
// string text and category are rejected. A file with no valid records, or
// one that is not a JSON array, leaves the collection unchanged.
func (s *QuoteService) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var raw []json.RawMessage

	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return ImportResult{}, domain.NewValidationError("file", "must be a JSON array of quotes")
	}

	// The array must be the whole file.
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return ImportResult{}, domain.NewValidationError("file", "must be a JSON array of quotes")
	}

	valid := make([]domain.Quote, 0, len(raw))

	for i, item := range raw {
		q, err := decodeImportRecord(item)
		if err != nil {
			logging.Trace(ctx, s.logger, "rejected import record",
				slog.Int("index", i),
				slog.Any("error", err),
			)
			continue
		}

		valid = append(valid, q)
	}

	result := ImportResult{Imported: len(valid), Rejected: len(raw) - len(valid)}

	if len(valid) == 0 {
		return result, domain.NewValidationErrorWithValue("file",
			fmt.Sprintf("contains no valid quotes (%d rejected)", result.Rejected), result.Rejected)
	}

	if err := s.store.Replace(ctx, valid); err != nil {
		return ImportResult{}, err
	}

	s.logger.InfoContext(ctx, "imported quotes",
		slog.Int("imported", result.Imported),
		slog.Int("rejected", result.Rejected),
	)

	return result, nil
}

func decodeImportRecord(item json.RawMessage) (domain.Quote, error) {
	var rec struct {
		Text     string `json:"text"`
		Category string `json:"category"`
	}

	if err := json.Unmarshal(item, &rec); err != nil {
		return domain.Quote{}, err
	}

	return domain.NewQuote(rec.Text, rec.Category)
}

// Export writes the collection to w as a JSON array indented by two spaces.
func (s *QuoteService) Export(w io.Writer) error {
	data, err := json.MarshalIndent(s.store.List(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	return nil
}

// ExportFilename returns the download name for an export taken at now.
func ExportFilename(now time.Time) string {
	return "quotes-" + now.Format(ExportDateLayout) + ".json"
}

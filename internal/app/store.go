package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// QuoteStore owns the authoritative in-memory quote collection and the
// selected category, and writes both through to a ports.KeyValueStore.
//
// Every mutation persists first and only then replaces the in-memory state,
// so a failed write leaves the previous collection in place.
type QuoteStore struct {
	kv     ports.KeyValueStore
	logger *slog.Logger

	// persistMu serializes read-modify-write cycles against the backend.
	persistMu sync.Mutex

	mu       sync.RWMutex
	quotes   []domain.Quote
	selected string

	onChange func(total int)
}

// QuoteStoreConfig configures a QuoteStore.
type QuoteStoreConfig struct {
	KV     ports.KeyValueStore
	Logger *slog.Logger

	// OnChange, if set, is called with the collection size after every
	// successful Load, Add, or Replace.
	OnChange func(total int)
}

// NewQuoteStore creates a store holding the seed quotes until Load is called.
func NewQuoteStore(cfg QuoteStoreConfig) *QuoteStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteStore{
		kv:       cfg.KV,
		logger:   logger.With(slog.String("component", "app.QuoteStore")),
		quotes:   domain.SeedQuotes(),
		selected: domain.AllCategories,
		onChange: cfg.OnChange,
	}
}

// Load restores the collection and selected category from the backend.
//
// A missing collection keeps the seed quotes. A collection that fails to
// decode is logged and also falls back to the seed quotes. Persisted
// records that fail validation are dropped. Only backend failures are
// returned.
func (s *QuoteStore) Load(ctx context.Context) error {
	quotes, err := s.readPersisted(ctx)
	if err != nil && !domain.IsNotFound(err) {
		return fmt.Errorf("loading quotes: %w", err)
	}

	if quotes == nil {
		quotes = domain.SeedQuotes()
	}

	selected := domain.AllCategories

	raw, err := s.kv.Get(ctx, ports.KeySelectedCategory)
	switch {
	case err == nil && len(raw) > 0:
		selected = string(raw)
	case err != nil && !domain.IsNotFound(err):
		return fmt.Errorf("loading selected category: %w", err)
	}

	s.mu.Lock()
	s.quotes = quotes
	s.selected = selected
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "loaded quotes",
		slog.Int("count", len(quotes)),
		slog.String("selected_category", selected),
	)
	s.changed(len(quotes))

	return nil
}

// readPersisted returns the persisted collection, nil if it is unusable, or
// an error from the backend (including domain.ErrNotFound).
func (s *QuoteStore) readPersisted(ctx context.Context) ([]domain.Quote, error) {
	raw, err := s.kv.Get(ctx, ports.KeyQuotes)
	if err != nil {
		return nil, err
	}

	var decoded []domain.Quote
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.logger.WarnContext(ctx, "persisted quotes are not valid JSON, ignoring",
			slog.Any("error", err),
			slog.Int("bytes", len(raw)),
		)

		return nil, nil
	}

	valid := make([]domain.Quote, 0, len(decoded))
	for _, q := range decoded {
		if q.Validate() != nil {
			continue
		}

		valid = append(valid, q)
	}

	if dropped := len(decoded) - len(valid); dropped > 0 {
		s.logger.WarnContext(ctx, "dropped invalid persisted quotes", slog.Int("dropped", dropped))
	}

	return valid, nil
}

// List returns a copy of the current collection.
func (s *QuoteStore) List() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// Len returns the collection size.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Snapshot returns the freshest persisted collection, falling back to the
// in-memory collection when nothing usable is persisted.
func (s *QuoteStore) Snapshot(ctx context.Context) ([]domain.Quote, error) {
	quotes, err := s.readPersisted(ctx)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}

	if quotes == nil {
		return s.List(), nil
	}

	return quotes, nil
}

// Add validates q, appends it, and persists the collection.
// Exact duplicates are allowed.
func (s *QuoteStore) Add(ctx context.Context, q domain.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}

	_, _, err := s.Update(ctx, func(current []domain.Quote) []domain.Quote {
		return append(current, q)
	})

	return err
}

// Replace persists quotes as the whole collection and installs it.
func (s *QuoteStore) Replace(ctx context.Context, quotes []domain.Quote) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	next := slices.Clone(quotes)
	if next == nil {
		next = []domain.Quote{}
	}

	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.install(next)

	return nil
}

// Update runs fn against the freshest persisted snapshot and installs the
// result. It holds the write lock for the whole read-modify-write, so local
// edits cannot be lost between the read and the write.
func (s *QuoteStore) Update(ctx context.Context, fn func(current []domain.Quote) []domain.Quote) ([]domain.Quote, []domain.Quote, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	current, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	next := fn(slices.Clone(current))
	if err := s.persist(ctx, next); err != nil {
		return nil, nil, err
	}

	s.install(next)

	return current, slices.Clone(next), nil
}

// SelectedCategory returns the last-selected filter, "all" by default.
func (s *QuoteStore) SelectedCategory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected
}

// SetSelectedCategory persists and installs the filter.
func (s *QuoteStore) SetSelectedCategory(ctx context.Context, category string) error {
	if category == "" {
		category = domain.AllCategories
	}

	if err := s.kv.Set(ctx, ports.KeySelectedCategory, []byte(category)); err != nil {
		return fmt.Errorf("saving selected category: %w", err)
	}

	s.mu.Lock()
	s.selected = category
	s.mu.Unlock()

	return nil
}

func (s *QuoteStore) persist(ctx context.Context, quotes []domain.Quote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	if err := s.kv.Set(ctx, ports.KeyQuotes, data); err != nil {
		return fmt.Errorf("saving quotes: %w", err)
	}

	return nil
}

func (s *QuoteStore) install(quotes []domain.Quote) {
	s.mu.Lock()
	s.quotes = quotes
	s.mu.Unlock()

	s.changed(len(quotes))
}

func (s *QuoteStore) changed(total int) {
	if s.onChange != nil {
		s.onChange(total)
	}
}

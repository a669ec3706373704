package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/mocks"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, kv ports.KeyValueStore) *QuoteStore {
	t.Helper()

	s := NewQuoteStore(QuoteStoreConfig{KV: kv, Logger: discardLogger()})
	require.NoError(t, s.Load(t.Context()))

	return s
}

func persistQuotes(t *testing.T, kv ports.KeyValueStore, quotes []domain.Quote) {
	t.Helper()

	data, err := json.Marshal(quotes)
	require.NoError(t, err)
	require.NoError(t, kv.Set(t.Context(), ports.KeyQuotes, data))
}

func TestQuoteStore_LoadEmptyUsesSeed(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())

	assert.Equal(t, domain.SeedQuotes(), s.List())
	assert.Equal(t, domain.AllCategories, s.SelectedCategory())
}

func TestQuoteStore_LoadRestoresPersisted(t *testing.T) {
	kv := storage.NewMemoryStore()
	persistQuotes(t, kv, []domain.Quote{{Text: "a", Category: "life"}})
	require.NoError(t, kv.Set(t.Context(), ports.KeySelectedCategory, []byte("life")))

	s := newTestStore(t, kv)

	assert.Equal(t, []domain.Quote{{Text: "a", Category: "life"}}, s.List())
	assert.Equal(t, "life", s.SelectedCategory())
}

func TestQuoteStore_LoadCorruptJSONKeepsSeed(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(t.Context(), ports.KeyQuotes, []byte(`{not json`)))

	s := newTestStore(t, kv)

	assert.Equal(t, domain.SeedQuotes(), s.List())
}

func TestQuoteStore_LoadDropsInvalidRecords(t *testing.T) {
	kv := storage.NewMemoryStore()
	persistQuotes(t, kv, []domain.Quote{
		{Text: "keep", Category: "c"},
		{Text: "  ", Category: "c"},
		{Text: "no category", Category: ""},
	})

	s := newTestStore(t, kv)

	assert.Equal(t, []domain.Quote{{Text: "keep", Category: "c"}}, s.List())
}

func TestQuoteStore_LoadBackendError(t *testing.T) {
	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Get(mock.Anything, ports.KeyQuotes).
		Return(nil, domain.NewUnavailableError("storage", "disk gone"))

	s := NewQuoteStore(QuoteStoreConfig{KV: kv, Logger: discardLogger()})
	err := s.Load(t.Context())

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestQuoteStore_LoadCallsOnChange(t *testing.T) {
	var got int

	s := NewQuoteStore(QuoteStoreConfig{
		KV:       storage.NewMemoryStore(),
		Logger:   discardLogger(),
		OnChange: func(total int) { got = total },
	})
	require.NoError(t, s.Load(t.Context()))

	assert.Equal(t, len(domain.SeedQuotes()), got)
}

func TestQuoteStore_AddPersistsAndAllowsDuplicates(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, kv)
	q := domain.Quote{Text: "dup", Category: "x"}

	require.NoError(t, s.Add(t.Context(), q))
	require.NoError(t, s.Add(t.Context(), q))

	reloaded := newTestStore(t, kv)
	assert.Equal(t, s.List(), reloaded.List())
	assert.Len(t, reloaded.List(), len(domain.SeedQuotes())+2)
}

func TestQuoteStore_AddRejectsInvalid(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())

	err := s.Add(t.Context(), domain.Quote{Text: "", Category: "x"})

	assert.True(t, domain.IsValidation(err))
	assert.Len(t, s.List(), len(domain.SeedQuotes()))
}

func TestQuoteStore_FailedPersistKeepsState(t *testing.T) {
	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Get(mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	kv.EXPECT().Set(mock.Anything, ports.KeyQuotes, mock.Anything).Return(errors.New("write failed"))

	s := newTestStore(t, kv)
	err := s.Replace(t.Context(), []domain.Quote{{Text: "a", Category: "b"}})

	require.Error(t, err)
	assert.Equal(t, domain.SeedQuotes(), s.List())
}

func TestQuoteStore_SnapshotReadsPersisted(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, kv)

	// Another writer updates the backend behind the store's back.
	external := []domain.Quote{{Text: "fresh", Category: "new"}}
	persistQuotes(t, kv, external)

	snapshot, err := s.Snapshot(t.Context())

	require.NoError(t, err)
	assert.Equal(t, external, snapshot)
}

func TestQuoteStore_SnapshotFallsBackToMemory(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())

	snapshot, err := s.Snapshot(t.Context())

	require.NoError(t, err)
	assert.Equal(t, domain.SeedQuotes(), snapshot)
}

func TestQuoteStore_ConcurrentAddsAreNotLost(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			assert.NoError(t, s.Add(context.Background(), domain.Quote{Text: "t", Category: "c"}))
		})
	}
	wg.Wait()

	assert.Len(t, s.List(), len(domain.SeedQuotes())+20)
}

func TestQuoteStore_SelectedCategoryRoundTrip(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, kv)

	require.NoError(t, s.SetSelectedCategory(t.Context(), "life"))
	assert.Equal(t, "life", newTestStore(t, kv).SelectedCategory())

	require.NoError(t, s.SetSelectedCategory(t.Context(), ""))
	assert.Equal(t, domain.AllCategories, newTestStore(t, kv).SelectedCategory())
}

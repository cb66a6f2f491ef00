package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	err   error
	items map[string]model.NewsItem
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[string]model.NewsItem)}
}

func (s *memoryStore) UpsertNewsItems(_ context.Context, items []model.NewsItem) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	for _, item := range items {
		s.items[item.Link] = item
	}
	return len(items), nil
}

func TestSyncer_Sync(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"items":[
			{"title":"A","link":"https://a","published":"2024-01-01","category":"energy"},
			{"title":"","link":"https://untitled"},
			{"title":"B","link":"https://b","published":"2024-01-02","category":"policy"}
		]}`)
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	store := newMemoryStore()
	var progressed []string
	syncer := NewSyncer(store,
		WithRateLimit(time.Millisecond),
		WithProgress(func(source string) { progressed = append(progressed, source) }),
	)

	result, err := syncer.Sync(context.Background(), []string{good.URL, bad.URL})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 2, result.Stored)
	assert.Equal(t, 1, result.Skipped)
	require.Contains(t, result.Failed, bad.URL)
	assert.ErrorIs(t, result.Failed[bad.URL], common.ErrFetch)
	assert.Len(t, store.items, 2)
	assert.Equal(t, []string{good.URL, bad.URL}, progressed)
}

func TestSyncer_StoreErrorAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"items":[{"title":"A","link":"https://a"}]}`)
	}))
	defer server.Close()

	store := newMemoryStore()
	store.err = errors.New("disk full")

	_, err := NewSyncer(store, WithRateLimit(time.Millisecond)).Sync(context.Background(), []string{server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSyncer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSyncer(newMemoryStore()).Sync(ctx, []string{"http://127.0.0.1:1"})
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	store := newMemoryStore()

	result, err := Import(context.Background(), store, []byte(`{"items":[{"title":"A","link":"https://a"},{"title":"B"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stored)
	assert.Equal(t, 1, result.Skipped)

	_, err = Import(context.Background(), store, []byte(`[]`))
	assert.ErrorIs(t, err, common.ErrBadResponse)
}

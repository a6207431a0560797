package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillWith(page *Page, calls *atomic.Int64) FillFunc {
	return func(_ context.Context) (*Page, error) {
		calls.Add(1)
		return page, nil
	}
}

func TestCache_HitAvoidsRefetch(t *testing.T) {
	c := NewCache(time.Minute)
	page := &Page{Count: 1, Results: []Product{{ID: "1", Name: "PS5"}}}

	var calls atomic.Int64
	fill := fillWith(page, &calls)

	got, err := c.Get(context.Background(), "home:1", fill)
	require.NoError(t, err)
	assert.Equal(t, page, got)

	got, err = c.Get(context.Background(), "home:1", fill)
	require.NoError(t, err)
	assert.Equal(t, page, got)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCache_ExpiredEntryRefetches(t *testing.T) {
	c := NewCache(10 * time.Millisecond)

	var calls atomic.Int64
	fill := fillWith(&Page{Count: 1}, &calls)

	_, err := c.Get(context.Background(), "home:1", fill)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = c.Get(context.Background(), "home:1", fill)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCache_BustForcesRefetch(t *testing.T) {
	c := NewCache(time.Minute)

	var calls atomic.Int64
	fill := fillWith(&Page{Count: 1}, &calls)

	_, err := c.Get(context.Background(), "promos", fill)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	c.Bust("promos")
	assert.Equal(t, 0, c.Len())

	_, err = c.Get(context.Background(), "promos", fill)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCache_BustAll(t *testing.T) {
	c := NewCache(time.Minute)

	var calls atomic.Int64
	fill := fillWith(&Page{}, &calls)

	for _, key := range []string{"home:1", "home:2", "filter:Sony:1"} {
		_, err := c.Get(context.Background(), key, fill)
		require.NoError(t, err)
	}
	require.Equal(t, 3, c.Len())

	c.BustAll()
	assert.Equal(t, 0, c.Len())
}

func TestCache_FillErrorNotCached(t *testing.T) {
	c := NewCache(time.Minute)

	var calls atomic.Int64
	boom := func(_ context.Context) (*Page, error) {
		calls.Add(1)
		return nil, errors.New("upstream down")
	}

	_, err := c.Get(context.Background(), "home:1", boom)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	_, err = c.Get(context.Background(), "home:1", boom)
	require.Error(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestCache_ConcurrentMissesCollapse(t *testing.T) {
	c := NewCache(time.Minute)

	var calls atomic.Int64
	slow := func(_ context.Context) (*Page, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &Page{Count: 7}, nil
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			page, err := c.Get(context.Background(), "home:1", slow)
			assert.NoError(t, err)
			assert.Equal(t, 7, page.Count)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
}

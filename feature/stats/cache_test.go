package stats

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCache_TTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewQueryCache(time.Minute, clock)
	loads := 0
	load := func() (int, error) {
		loads++
		return loads, nil
	}

	v, err := cached(c, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, _ = cached(c, "k", load)
	assert.Equal(t, 1, v)

	clock.Advance(2 * time.Minute)
	v, _ = cached(c, "k", load)
	assert.Equal(t, 2, v)

	c.Invalidate()
	v, _ = cached(c, "k", load)
	assert.Equal(t, 3, v)
}

func TestQueryCache_ZeroTTLDisables(t *testing.T) {
	c := NewQueryCache(0, clockwork.NewFakeClock())
	loads := 0
	for i := 0; i < 3; i++ {
		_, _ = cached(c, "k", func() (int, error) { loads++; return loads, nil })
	}
	assert.Equal(t, 3, loads)
}

func TestQueryCache_ErrorsNotCached(t *testing.T) {
	c := NewQueryCache(time.Minute, clockwork.NewFakeClock())
	_, err := cached(c, "k", func() (string, error) { return "", errors.New("db down") })
	assert.Error(t, err)

	v, err := cached(c, "k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestQueryCache_SharesConcurrentLoads(t *testing.T) {
	c := NewQueryCache(time.Minute, clockwork.NewFakeClock())
	var loads int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cached(c, "k", func() (int, error) {
				atomic.AddInt32(&loads, 1)
				<-release
				return 1, nil
			})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&loads), int32(8))
	v, _ := cached(c, "k", func() (int, error) { return 2, nil })
	assert.Equal(t, 1, v)
}

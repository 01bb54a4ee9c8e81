package diffview

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_ComputesOncePerKey(t *testing.T) {
	c := NewMemoryCache()
	var calls atomic.Int32

	compute := func() ([]Chunk, error) {
		calls.Add(1)
		return []Chunk{{Index: 0, NumLines: 1}}, nil
	}

	for i := 0; i < 3; i++ {
		chunks, err := c.GetOrCompute("k", compute)
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_ConcurrentCallersShareOneFlight(t *testing.T) {
	c := NewMemoryCache()
	var calls atomic.Int32
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			chunks, err := c.GetOrCompute("k", func() ([]Chunk, error) {
				calls.Add(1)
				return []Chunk{{Index: 7}}, nil
			})
			assert.NoError(t, err)
			assert.Len(t, chunks, 1)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestMemoryCache_ErrorsNotCached(t *testing.T) {
	c := NewMemoryCache()
	boom := errors.New("boom")
	fail := true

	compute := func() ([]Chunk, error) {
		if fail {
			return nil, boom
		}
		return []Chunk{{Index: 1}}, nil
	}

	_, err := c.GetOrCompute("k", compute)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	fail = false
	chunks, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestMemoryCache_Purge(t *testing.T) {
	c := NewMemoryCache()
	var calls atomic.Int32

	compute := func() ([]Chunk, error) {
		calls.Add(1)
		return nil, nil
	}

	_, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	c.Purge("k")
	_, err = c.GetOrCompute("k", compute)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

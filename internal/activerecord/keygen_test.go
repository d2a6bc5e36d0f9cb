package activerecord

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	key := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(key)
	require.NoError(t, err, "key should be a valid UUID")
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, key)
}

func TestUUIDv7Generator_Uniqueness(t *testing.T) {
	gen := UUIDv7Generator{}
	const iterations = 1000

	keys := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		key := gen.Generate()
		require.False(t, keys[key], "key %s generated twice", key)
		keys[key] = true
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("author")
	assert.Equal(t, "author-1", gen.Generate())
	assert.Equal(t, "author-2", gen.Generate())

	gen.Reset()
	assert.Equal(t, "author-1", gen.Generate())

	assert.Equal(t, "key-1", NewSequenceGenerator("").Generate())
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	gen := NewSequenceGenerator("k")
	const goroutines = 50

	keys := make(chan string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keys <- gen.Generate()
		}()
	}
	wg.Wait()
	close(keys)

	seen := make(map[string]bool)
	for k := range keys {
		assert.False(t, seen[k], "key %s generated twice", k)
		seen[k] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("k1", "k2")
	assert.Equal(t, "k1", gen.Generate())
	assert.Equal(t, "k2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

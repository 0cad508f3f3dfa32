package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	assert.NotEqual(t, gen.GenerateString(), gen.GenerateString())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{EventPrefix, UserPrefix} {
		t.Run(prefix, func(t *testing.T) {
			id := gen.GenerateWithPrefix(prefix)
			require.True(t, strings.HasPrefix(id, prefix+"_"), id)
			_, err := ulid.Parse(strings.TrimPrefix(id, prefix+"_"))
			assert.NoError(t, err)
		})
	}
}

func TestGenerateIsMonotonic(t *testing.T) {
	gen := NewGenerator()
	fixed := time.UnixMilli(1_700_000_000_000)
	gen.now = func() time.Time { return fixed }

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.GenerateString()
	}

	assert.True(t, sort.StringsAreSorted(ids))
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	const workers, perWorker = 8, 200

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := gen.GenerateString()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewEventID().String(), EventPrefix+"_"))
	assert.True(t, strings.HasPrefix(NewUserID().String(), UserPrefix+"_"))
	assert.NotEqual(t, NewUserID(), NewUserID())
}

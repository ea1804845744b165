package pkg

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 16
	const increments = 100

	var counter int
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < increments; j++ {
				unlock := km.Lock("ABC234")
				counter++
				unlock()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, workers*increments, counter)
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()

	unlockFirst := km.Lock("ABC234")

	done := make(chan struct{})
	go func() {
		unlock := km.Lock("XYZ789")
		unlock()
		close(done)
	}()

	// The second key must proceed while the first is held
	<-done

	unlockFirst()
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	km := NewKeyedMutex()

	unlock := km.Lock("ABC234")
	unlock()

	assert.Zero(t, km.Len())
}

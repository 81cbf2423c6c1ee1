package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("room-1")
			defer km.Unlock("room-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("room-1")
	done := make(chan struct{})
	go func() {
		km.Lock("room-2")
		km.Unlock("room-2")
		close(done)
	}()

	// A different key must not block behind room-1.
	<-done
	km.Unlock("room-1")
}

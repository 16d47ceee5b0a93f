package gacha

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewRandConcurrentUse drives one shared source from several goroutines,
// the way concurrent draws from different users hit the service's single
// generator. Run with -race to catch unsynchronized access.
func TestNewRandConcurrentUse(t *testing.T) {
	rng := NewRand()

	const goroutines = 8
	const callsEach = 1000

	var wg sync.WaitGroup
	errCh := make(chan error, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < callsEach; i++ {
				if v := rng.Intn(RollMax); v < 0 || v >= RollMax {
					errCh <- assert.AnError
					return
				}
				if f := rng.Float64(); f < 0 || f >= 1 {
					errCh <- assert.AnError
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	assert.Empty(t, errCh, "out-of-range value from concurrent source")
}

func TestNewRandRange(t *testing.T) {
	rng := NewRand()
	for i := 0; i < 1000; i++ {
		roll := rng.Intn(RollMax) + RollMin
		assert.GreaterOrEqual(t, roll, RollMin)
		assert.LessOrEqual(t, roll, RollMax)
	}
}

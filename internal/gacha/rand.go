package gacha

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness source for the draw engine. Tests inject seeded or
// scripted sources to pin outcomes.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// lockedRand guards a rand.Rand with a mutex. One source serves every request
// goroutine, so access must be serialized the way the top-level math/rand
// functions do it.
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

// NewRand returns a time-seeded randomness source safe for concurrent use.
func NewRand() Rand {
	return &lockedRand{src: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Package simulate holds the randomness and latency helpers shared by the mock gateways.
package simulate

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness a mock gateway draws latency and scores from.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Source returns r wrapped for concurrent use, or the process-wide source when r is nil.
func Source(r Rand) Rand {
	if r == nil {
		return globalRand{}
	}
	if _, ok := r.(*lockedRand); ok {
		return r
	}
	return &lockedRand{r: r}
}

// Latency sleeps for base + r*spread milliseconds, returning early if ctx is done.
func Latency(ctx context.Context, r Rand, base, spread float64) {
	Sleep(ctx, time.Duration((base+r.Float64()*spread)*float64(time.Millisecond)))
}

func Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

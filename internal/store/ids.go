package store

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// keyGenerator hands out ULID document keys. Keys generated within the same
// millisecond stay strictly increasing thanks to the monotonic entropy source,
// so lexical key order matches push order.
type keyGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newKeyGenerator() *keyGenerator {
	return &keyGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *keyGenerator) NewAt(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t.UTC()), g.entropy).String()
}

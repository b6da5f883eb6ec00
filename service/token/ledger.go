package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/viant/offboard/internal/clock"
)

// Ledger records consumed tokens so single-use links cannot be replayed.
// Entries only need to outlive the token expiry.
type Ledger interface {
	// Consume marks the token consumed, it returns false when the token was already consumed
	Consume(ctx context.Context, token string, expiresAt time.Time) (bool, error)

	// Release forgets a consumed token so its link can be used again
	Release(ctx context.Context, token string) error
}

// Fingerprint returns the ledger key of a token
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MemoryLedger is a process local Ledger
type MemoryLedger struct {
	mux     sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// Consume implements Ledger
func (l *MemoryLedger) Consume(_ context.Context, token string, expiresAt time.Time) (bool, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	now := l.now()
	for key, expiry := range l.entries {
		if now.After(expiry) {
			delete(l.entries, key)
		}
	}
	key := Fingerprint(token)
	if _, ok := l.entries[key]; ok {
		return false, nil
	}
	l.entries[key] = expiresAt
	return true, nil
}

// Release implements Ledger
func (l *MemoryLedger) Release(_ context.Context, token string) error {
	l.mux.Lock()
	defer l.mux.Unlock()
	delete(l.entries, Fingerprint(token))
	return nil
}

// Len returns number of tracked tokens
func (l *MemoryLedger) Len() int {
	l.mux.Lock()
	defer l.mux.Unlock()
	return len(l.entries)
}

// NewMemoryLedger creates a memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]time.Time), now: clock.Now}
}

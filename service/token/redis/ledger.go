// Package redis provides a shared consumed-token ledger backed by redis
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/viant/offboard/internal/clock"
	"github.com/viant/offboard/service/token"
)

// DefaultPrefix namespaces ledger keys
const DefaultPrefix = "offboard:token:"

// Ledger implements token.Ledger with SETNX and a TTL bound to the token expiry
type Ledger struct {
	client goredis.UniversalClient
	prefix string
}

// Consume implements token.Ledger
func (l *Ledger) Consume(ctx context.Context, tkn string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(clock.Now())
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := l.client.SetNX(ctx, l.prefix+token.Fingerprint(tkn), expiresAt.Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume token: %w", err)
	}
	return ok, nil
}

// Release implements token.Ledger
func (l *Ledger) Release(ctx context.Context, tkn string) error {
	if err := l.client.Del(ctx, l.prefix+token.Fingerprint(tkn)).Err(); err != nil {
		return fmt.Errorf("failed to release token: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (l *Ledger) Close() error {
	return l.client.Close()
}

// New creates a redis ledger
func New(client goredis.UniversalClient, prefix string) *Ledger {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Ledger{client: client, prefix: prefix}
}

// NewWithAddress creates a ledger with a client connected to address
func NewWithAddress(address, password string, db int) *Ledger {
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    []string{address},
		Password: password,
		DB:       db,
	})
	return New(client, "")
}

var _ token.Ledger = (*Ledger)(nil)

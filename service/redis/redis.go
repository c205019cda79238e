package redis

import (
	"errors"
	"time"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("key not found")
)

// Service provides the redis commands the cache stack is built on
type Service interface {
	Get(c ctx.Ctx, key string) ([]byte, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) (int, error)
	Exists(c ctx.Ctx, key string) (bool, error)
	Incrby(c ctx.Ctx, key string, diff int) (int64, error)
	// TTL returns the remaining time to live of a key in seconds
	TTL(c ctx.Ctx, key string) (int64, error)
}

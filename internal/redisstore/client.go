// Package redisstore keeps match state and logs in Redis.
package redisstore

import (
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultAddr        = "127.0.0.1:6379"
	defaultMinIdle     = 5
	defaultMaxIdle     = 10
	defaultPoolSize    = 10
	defaultMaxLifetime = 2 * time.Minute
	defaultMaxIdleTime = 5 * time.Minute
)

// ClientOption adjusts the options a client is built with.
type ClientOption func(*redis.Options)

// NewClient returns a Redis client with pooled defaults and opts applied.
func NewClient(opts ...ClientOption) *redis.Client {
	return redis.NewClient(Options(opts...))
}

// Options resolves the client options without dialing.
func Options(opts ...ClientOption) *redis.Options {
	options := &redis.Options{
		Addr:            defaultAddr,
		PoolSize:        defaultPoolSize,
		MinIdleConns:    defaultMinIdle,
		MaxIdleConns:    defaultMaxIdle,
		ConnMaxLifetime: defaultMaxLifetime,
		ConnMaxIdleTime: defaultMaxIdleTime,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithAddress sets host:port. Malformed addresses are ignored.
func WithAddress(addr string) ClientOption {
	return func(o *redis.Options) {
		if _, _, err := net.SplitHostPort(addr); err == nil {
			o.Addr = addr
		}
	}
}

// WithPassword sets the AUTH password.
func WithPassword(pass string) ClientOption {
	return func(o *redis.Options) {
		o.Password = pass
	}
}

// WithDB selects the logical database.
func WithDB(db int) ClientOption {
	return func(o *redis.Options) {
		if db >= 0 {
			o.DB = db
		}
	}
}

// WithPoolSize sets the connection pool size.
func WithPoolSize(size int) ClientOption {
	return func(o *redis.Options) {
		if size > 0 {
			o.PoolSize = size
		}
	}
}

// WithTimeouts sets the read and write deadlines of single commands.
func WithTimeouts(read, write time.Duration) ClientOption {
	return func(o *redis.Options) {
		if read > 0 {
			o.ReadTimeout = read
		}
		if write > 0 {
			o.WriteTimeout = write
		}
	}
}

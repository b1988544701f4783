package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Server defaults.
const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8000
	DefaultCount        = 10
	DefaultMaxBodySize  = 1 << 20 // 1MB
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// Config holds the mock server settings.
type Config struct {
	Host string
	Port int

	// Count is the number of items each resource is seeded with.
	Count int

	// MaxConnections caps concurrent connections; 0 means unlimited.
	MaxConnections int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// FreshCreateSessions builds each POST template from a one-off session
	// derived from the server seed instead of the shared session.
	FreshCreateSessions bool

	// MaxBodySize limits request bodies, in bytes.
	MaxBodySize int64

	// Version is reported in the OpenAPI document.
	Version string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		Count:        DefaultCount,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		MaxBodySize:  DefaultMaxBodySize,
		Version:      "dev",
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Count < 1 {
		errs = append(errs, fmt.Errorf("count must be at least 1, got %d", c.Count))
	}
	if c.MaxConnections < 0 {
		errs = append(errs, fmt.Errorf("max connections cannot be negative, got %d", c.MaxConnections))
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		errs = append(errs, errors.New("timeouts cannot be negative"))
	}
	if c.MaxBodySize < 1 {
		errs = append(errs, fmt.Errorf("max body size must be positive, got %d", c.MaxBodySize))
	}
	return errors.Join(errs...)
}

// Package kv provides the key-value persistence surface behind the review board.
//
// A Store holds opaque text values under string keys. Backends are interchangeable:
// an in-memory map for tests and development, one file per key, a SQLite table,
// Redis, or a Firestore collection. Prefixed scopes a backend to a single visitor so
// that every browser gets its own private key space.
package kv

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidKey is returned when an empty key is supplied.
var ErrInvalidKey = errors.New("kv: key is required")

// Store is a minimal text key-value surface.
//
// Get reports ok=false when the key is absent; absence is not an error.
// Set replaces any prior value in a single write. Remove is idempotent.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Closer is implemented by backends holding connections or handles.
type Closer interface {
	Close() error
}

// Close releases backend resources when the store holds any.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}

const namespaceSeparator = ":"

type prefixed struct {
	next   Store
	prefix string
}

// Prefixed scopes every key of next under namespace. An empty namespace returns next unchanged.
func Prefixed(next Store, namespace string) Store {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return next
	}
	if p, ok := next.(*prefixed); ok {
		return &prefixed{next: p.next, prefix: p.prefix + namespace + namespaceSeparator}
	}
	return &prefixed{next: next, prefix: namespace + namespaceSeparator}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return p.next.Remove(ctx, p.prefix+key)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

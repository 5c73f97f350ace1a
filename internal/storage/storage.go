package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store caches bearer tokens per profile id.
type Store interface {
	Close() error
	Token(id string) (string, bool, error)
	PutToken(id, token string) error
	DeleteToken(id string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TokenTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTokenTTL        = 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                       { return nil }
func (noopStore) Token(string) (string, bool, error) { return "", false, nil }
func (noopStore) PutToken(string, string) error      { return nil }
func (noopStore) DeleteToken(string) error           { return nil }

// Package store persists decoded CSV header blocks per source so that the data
// lines of a source can be read long after its header line went by.
//
// Only the reserved line number and the header properties of a block are
// persisted. Blocks are validated before they are written: a store never holds
// a header block that fails to decode.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/telhawk-systems/telhawk-csv/internal/config"
	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
	"github.com/telhawk-systems/telhawk-csv/internal/event"
)

// ErrNotFound is returned when no header block exists for a source.
var ErrNotFound = errors.New("header block not found")

// Store keeps one header block per source.
type Store interface {
	Save(ctx context.Context, source string, h *headers.Headers) error
	Get(ctx context.Context, source string) (*headers.Headers, error)
	Delete(ctx context.Context, source string) error
	Close() error
}

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStoreFromURL(cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
	case "postgres":
		if err := Migrate(cfg.Postgres.DSN, cfg.Postgres.MigrationsPath); err != nil {
			return nil, err
		}
		return NewPostgresStore(ctx, cfg.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// record is the persisted form of a header block.
type record struct {
	lineNumber int64
	hasLine    bool
	tokens     map[string]string
}

// snapshot validates h and extracts what gets persisted.
func snapshot(source string, h *headers.Headers) (*record, error) {
	if source == "" {
		return nil, fmt.Errorf("source is required")
	}
	if h == nil {
		return nil, fmt.Errorf("header block is nil")
	}
	if _, err := h.Fields(); err != nil {
		return nil, fmt.Errorf("refusing to store header block for %s: %w", source, err)
	}

	rec := &record{tokens: make(map[string]string)}
	rec.lineNumber, rec.hasLine = h.LineNumber()
	for _, p := range h.Properties() {
		if !strings.HasPrefix(p.Name, headers.HeaderNamePrefix) {
			continue
		}
		// Fields succeeded, so every header value is a string.
		s, _ := p.String()
		rec.tokens[p.Name] = s
	}
	return rec, nil
}

// restore rebuilds a header block. Token order is irrelevant: decoding orders
// header properties by their index.
func (r *record) restore() *headers.Headers {
	bag := event.New()
	if r.hasLine {
		bag.SetLong(event.LineNumberProperty, r.lineNumber)
	}
	for k, v := range r.tokens {
		bag.SetString(k, v)
	}
	return headers.Over(bag)
}

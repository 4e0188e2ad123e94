// Package dlq keeps header lines that could not be processed on disk for later
// inspection and replay.
package dlq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/telhawk-systems/telhawk-csv/internal/logging"
	"github.com/telhawk-systems/telhawk-csv/internal/model"
)

// ErrDisabled is returned by operations on a nil queue.
var ErrDisabled = errors.New("dlq not enabled")

// ErrNotFound is returned when no entry matches an envelope ID.
var ErrNotFound = errors.New("dlq entry not found")

// ErrInvalidID is returned for envelope IDs that cannot be part of a file name.
var ErrInvalidID = errors.New("invalid envelope id")

// FailedHeader captures a rejected header line.
type FailedHeader struct {
	Timestamp time.Time             `json:"timestamp"`
	Envelope  *model.HeaderEnvelope `json:"envelope"`
	Error     string                `json:"error"`
	Reason    string                `json:"reason"`
}

// Stats summarizes the queue.
type Stats struct {
	Enabled      bool   `json:"enabled"`
	Written      uint64 `json:"written"`
	PendingFiles int    `json:"pending_files"`
	BasePath     string `json:"base_path,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Queue writes failed header lines as JSON files under basePath. A nil *Queue
// is a disabled queue: writes are dropped and reads fail with ErrDisabled.
type Queue struct {
	basePath string
	logger   *logging.Logger
	mu       sync.Mutex
	written  uint64
}

// NewQueue creates a queue writing to basePath.
func NewQueue(basePath string, logger *logging.Logger) (*Queue, error) {
	if basePath == "" {
		basePath = "/var/lib/telhawk-csv/dlq"
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create dlq directory: %w", err)
	}
	return &Queue{basePath: basePath, logger: logger}, nil
}

// checkID rejects IDs that would leave basePath or act as glob patterns.
func checkID(id string) error {
	if id == "" || strings.Contains(id, "..") || strings.ContainsAny(id, `/\*?[`) {
		return fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return nil
}

func fileName(ts time.Time, seq uint64, id string) string {
	return fmt.Sprintf("failed_%019d_%06d_%s.json", ts.UnixNano(), seq, id)
}

// Write records a failed header line.
func (q *Queue) Write(ctx context.Context, envelope *model.HeaderEnvelope, cause error, reason string) error {
	if q == nil {
		return nil
	}
	if envelope == nil {
		return fmt.Errorf("dlq entry requires an envelope")
	}
	if err := checkID(envelope.ID); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now().UTC()
	failed := FailedHeader{
		Timestamp: now,
		Envelope:  envelope,
		Reason:    reason,
	}
	if cause != nil {
		failed.Error = cause.Error()
	}

	data, err := json.MarshalIndent(failed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dlq entry: %w", err)
	}

	name := fileName(now, q.written, envelope.ID)
	if err := os.WriteFile(filepath.Join(q.basePath, name), data, 0o644); err != nil {
		q.logger.ErrorContext(ctx, "failed to write DLQ entry", logging.Error(err))
		return fmt.Errorf("write dlq entry: %w", err)
	}

	q.written++
	q.logger.InfoContext(ctx, "DLQ: wrote failed header line",
		logging.Source(envelope.Source),
		logging.EventID(envelope.ID),
		slog.String("reason", reason),
		slog.String(logging.FieldError, failed.Error),
	)
	return nil
}

// Stats returns queue counters.
func (q *Queue) Stats() Stats {
	if q == nil {
		return Stats{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	stats := Stats{Enabled: true, Written: q.written, BasePath: q.basePath}
	names, err := q.entries()
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	stats.PendingFiles = len(names)
	return stats
}

// List returns up to limit entries, oldest first. A limit of 0 returns all.
func (q *Queue) List(ctx context.Context, limit int) ([]FailedHeader, error) {
	if q == nil {
		return nil, ErrDisabled
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	names, err := q.entries()
	if err != nil {
		return nil, err
	}

	var out []FailedHeader
	for _, name := range names {
		if limit > 0 && len(out) >= limit {
			break
		}
		data, err := os.ReadFile(filepath.Join(q.basePath, name))
		if err != nil {
			q.logger.WarnContext(ctx, "failed to read DLQ file", slog.String("file", name), logging.Error(err))
			continue
		}
		var failed FailedHeader
		if err := json.Unmarshal(data, &failed); err != nil {
			q.logger.WarnContext(ctx, "failed to parse DLQ file", slog.String("file", name), logging.Error(err))
			continue
		}
		out = append(out, failed)
	}
	return out, nil
}

// Delete removes the entries recorded for an envelope ID.
func (q *Queue) Delete(ctx context.Context, id string) error {
	if q == nil {
		return ErrDisabled
	}
	if err := checkID(id); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(q.basePath, "failed_*_"+id+".json"))
	if err != nil {
		return fmt.Errorf("search dlq files: %w", err)
	}
	if len(matches) == 0 {
		return ErrNotFound
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("delete dlq file: %w", err)
		}
	}
	q.logger.InfoContext(ctx, "DLQ: deleted entry", logging.EventID(id))
	return nil
}

// Purge removes every entry and returns how many were deleted.
func (q *Queue) Purge(ctx context.Context) (int, error) {
	if q == nil {
		return 0, ErrDisabled
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	names, err := q.entries()
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, name := range names {
		if err := os.Remove(filepath.Join(q.basePath, name)); err != nil {
			q.logger.WarnContext(ctx, "failed to delete DLQ file", slog.String("file", name), logging.Error(err))
			continue
		}
		deleted++
	}
	q.logger.InfoContext(ctx, "DLQ: purged entries", slog.Int("deleted", deleted))
	return deleted, nil
}

// entries lists entry file names in write order. Callers hold q.mu.
func (q *Queue) entries() ([]string, error) {
	files, err := os.ReadDir(q.basePath)
	if err != nil {
		return nil, fmt.Errorf("read dlq directory: %w", err)
	}
	var names []string
	for _, f := range files {
		if f.IsDir() || !strings.HasPrefix(f.Name(), "failed_") || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names, nil
}

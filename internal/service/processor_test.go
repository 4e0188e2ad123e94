package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-csv/internal/dlq"
	"github.com/telhawk-systems/telhawk-csv/internal/logging"
	"github.com/telhawk-systems/telhawk-csv/internal/messaging"
	"github.com/telhawk-systems/telhawk-csv/internal/model"
	"github.com/telhawk-systems/telhawk-csv/internal/pipeline"
	"github.com/telhawk-systems/telhawk-csv/internal/store"
)

func TestProcessor_Counters(t *testing.T) {
	ctx := context.Background()
	pl := pipeline.New(store.NewMemoryStore(), pipeline.WithLogger(logging.Discard()))
	p := NewProcessor(pl, "memory", messaging.NopPublisher{}, nil)

	block, err := p.Process(ctx, model.NewHeaderEnvelope("fw", 1, "timestamp,host"))
	require.NoError(t, err)
	assert.Len(t, block.Columns, 2)

	_, err = p.Process(ctx, model.NewHeaderEnvelope("fw", 2, "timestamp,,host"))
	assert.Error(t, err)

	stats := p.Health()
	assert.Equal(t, uint64(1), stats.Processed)
	assert.Equal(t, uint64(1), stats.Failed)
	assert.Equal(t, "memory", stats.Store)
	assert.False(t, stats.Messaging.Enabled)
	assert.False(t, stats.DLQ.Enabled)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, int64(0))
}

func TestProcessor_LookupForget(t *testing.T) {
	ctx := context.Background()
	pl := pipeline.New(store.NewMemoryStore(), pipeline.WithLogger(logging.Discard()))
	p := NewProcessor(pl, "memory", nil, nil)

	_, err := p.Process(ctx, model.NewHeaderEnvelope("fw", 1, "timestamp,host"))
	require.NoError(t, err)

	block, err := p.Lookup(ctx, "fw")
	require.NoError(t, err)
	assert.Len(t, block.Columns, 2)

	require.NoError(t, p.Forget(ctx, "fw"))
	_, err = p.Lookup(ctx, "fw")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProcessor_DLQHealth(t *testing.T) {
	q, err := dlq.NewQueue(t.TempDir(), logging.Discard())
	require.NoError(t, err)
	pl := pipeline.New(store.NewMemoryStore(), pipeline.WithDLQ(q), pipeline.WithLogger(logging.Discard()))
	p := NewProcessor(pl, "memory", nil, q)

	_, err = p.Process(context.Background(), model.NewHeaderEnvelope("fw", 1, ""))
	require.Error(t, err)

	stats := p.Health()
	assert.True(t, stats.DLQ.Enabled)
	assert.Equal(t, 1, stats.DLQ.PendingFiles)
	assert.Same(t, q, p.DLQ())
}

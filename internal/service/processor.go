package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/telhawk-systems/telhawk-csv/internal/dlq"
	"github.com/telhawk-systems/telhawk-csv/internal/messaging"
	"github.com/telhawk-systems/telhawk-csv/internal/model"
	"github.com/telhawk-systems/telhawk-csv/internal/pipeline"
)

// Processor wraps the pipeline and captures basic telemetry.
type Processor struct {
	pipeline  *pipeline.Pipeline
	backend   string
	publisher messaging.Publisher
	dlq       *dlq.Queue
	startedAt time.Time
	processed atomic.Uint64
	failed    atomic.Uint64
}

// NewProcessor creates a new Processor. publisher and queue are only consulted
// for health reporting and may be nil.
func NewProcessor(p *pipeline.Pipeline, backend string, publisher messaging.Publisher, queue *dlq.Queue) *Processor {
	return &Processor{
		pipeline:  p,
		backend:   backend,
		publisher: publisher,
		dlq:       queue,
		startedAt: time.Now().UTC(),
	}
}

// Process runs the pipeline against the envelope.
func (p *Processor) Process(ctx context.Context, envelope *model.HeaderEnvelope) (*model.HeaderBlock, error) {
	block, err := p.pipeline.Process(ctx, envelope)
	if err != nil {
		p.failed.Add(1)
		return nil, err
	}
	p.processed.Add(1)
	return block, nil
}

// Lookup returns the stored header block for source.
func (p *Processor) Lookup(ctx context.Context, source string) (*model.HeaderBlock, error) {
	return p.pipeline.Lookup(ctx, source)
}

// Forget deletes the stored header block for source.
func (p *Processor) Forget(ctx context.Context, source string) error {
	return p.pipeline.Forget(ctx, source)
}

// DLQ returns the dead letter queue, nil when disabled.
func (p *Processor) DLQ() *dlq.Queue { return p.dlq }

// Stats returns a snapshot of processor metrics.
type Stats struct {
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Processed     uint64                 `json:"processed"`
	Failed        uint64                 `json:"failed"`
	Store         string                 `json:"store"`
	Messaging     messaging.HealthStatus `json:"messaging"`
	DLQ           dlq.Stats              `json:"dlq"`
}

// Health returns live status for health checks.
func (p *Processor) Health() Stats {
	return Stats{
		UptimeSeconds: int64(time.Since(p.startedAt).Seconds()),
		Processed:     p.processed.Load(),
		Failed:        p.failed.Load(),
		Store:         p.backend,
		Messaging:     messaging.CheckHealth(p.publisher),
		DLQ:           p.dlq.Stats(),
	}
}

// Package pipeline turns raw header lines into stored, announced header blocks.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
	"github.com/telhawk-systems/telhawk-csv/internal/dlq"
	"github.com/telhawk-systems/telhawk-csv/internal/logging"
	"github.com/telhawk-systems/telhawk-csv/internal/messaging"
	"github.com/telhawk-systems/telhawk-csv/internal/metrics"
	"github.com/telhawk-systems/telhawk-csv/internal/middleware"
	"github.com/telhawk-systems/telhawk-csv/internal/model"
	"github.com/telhawk-systems/telhawk-csv/internal/parser"
	"github.com/telhawk-systems/telhawk-csv/internal/store"
)

// DLQ reasons.
const (
	ReasonLoadFailed   = "load_failed"
	ReasonDecodeFailed = "decode_failed"
	ReasonStoreFailed  = "store_failed"
)

// ErrInvalidEnvelope is returned for envelopes missing a source.
var ErrInvalidEnvelope = errors.New("invalid header envelope")

// Pipeline loads, decodes, stores and announces header lines.
type Pipeline struct {
	store     store.Store
	publisher messaging.Publisher
	dlq       *dlq.Queue
	subject   string
	logger    *logging.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher announces accepted and rejected blocks on subject.
func WithPublisher(p messaging.Publisher, subject string) Option {
	return func(pl *Pipeline) {
		if p != nil {
			pl.publisher = p
		}
		if subject != "" {
			pl.subject = subject
		}
	}
}

// WithDLQ records rejected lines in q.
func WithDLQ(q *dlq.Queue) Option {
	return func(pl *Pipeline) { pl.dlq = q }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *logging.Logger) Option {
	return func(pl *Pipeline) {
		if l != nil {
			pl.logger = l
		}
	}
}

// New creates a pipeline persisting blocks in s.
func New(s store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     s,
		publisher: messaging.NopPublisher{},
		subject:   messaging.SubjectHeadersDecoded,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process loads the envelope's header line, stores the typed block under the
// envelope's source and announces it.
func (p *Pipeline) Process(ctx context.Context, env *model.HeaderEnvelope) (*model.HeaderBlock, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline not configured")
	}
	if env == nil || env.Source == "" {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidEnvelope)
	}

	start := time.Now()
	defer func() { metrics.ProcessDuration.Observe(time.Since(start).Seconds()) }()

	log := p.logger.With(logging.Source(env.Source), logging.LineNumber(env.LineNumber), logging.EventID(env.ID))

	h := headers.New()
	if err := h.Load(env.LineNumber, env.Line); err != nil {
		p.reject(ctx, log, env, err, ReasonLoadFailed)
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := h.Normalize(); err != nil {
		p.reject(ctx, log, env, err, ReasonDecodeFailed)
		return nil, fmt.Errorf("decode: %w", err)
	}

	block, err := model.NewHeaderBlock(h)
	if err != nil {
		p.reject(ctx, log, env, err, ReasonDecodeFailed)
		return nil, fmt.Errorf("decode: %w", err)
	}
	block.EnvelopeID = env.ID
	block.Source = env.Source

	storeStart := time.Now()
	err = p.store.Save(ctx, env.Source, h)
	metrics.StorageDuration.Observe(time.Since(storeStart).Seconds())
	if err != nil {
		metrics.StorageErrors.Inc()
		p.reject(ctx, log, env, err, ReasonStoreFailed)
		return nil, fmt.Errorf("store: %w", err)
	}

	metrics.HeaderLinesTotal.WithLabelValues("accepted").Inc()
	metrics.HeaderColumns.Observe(float64(len(block.Columns)))
	log.DebugContext(ctx, "header block accepted", logging.Columns(len(block.Columns)))

	p.announce(ctx, p.subject, env, block)
	return block, nil
}

// Lookup returns the stored block for source.
func (p *Pipeline) Lookup(ctx context.Context, source string) (*model.HeaderBlock, error) {
	h, err := p.store.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	block, err := model.NewHeaderBlock(h)
	if err != nil {
		return nil, err
	}
	block.Source = source
	return block, nil
}

// Forget removes the stored block for source.
func (p *Pipeline) Forget(ctx context.Context, source string) error {
	return p.store.Delete(ctx, source)
}

// Rejection is published for header lines the pipeline refused.
type Rejection struct {
	Envelope *model.HeaderEnvelope `json:"envelope"`
	Reason   string                `json:"reason"`
	Error    string                `json:"error"`
}

func (p *Pipeline) reject(ctx context.Context, log *logging.Logger, env *model.HeaderEnvelope, cause error, reason string) {
	metrics.HeaderLinesTotal.WithLabelValues("rejected").Inc()
	metrics.DecodeErrors.WithLabelValues(ErrorKind(cause)).Inc()

	log.WarnContext(ctx, "header line rejected", slog.String("reason", reason), logging.Error(cause))

	if p.dlq != nil {
		if err := p.dlq.Write(ctx, env, cause, reason); err != nil {
			log.ErrorContext(ctx, "failed to record rejected header line", logging.Error(err))
		} else {
			metrics.DLQWrites.Inc()
		}
	}

	p.announce(ctx, messaging.SubjectHeadersRejected, env, Rejection{Envelope: env, Reason: reason, Error: cause.Error()})
}

// announce publishes v; failures are logged and counted but never fail the line.
func (p *Pipeline) announce(ctx context.Context, subject string, env *model.HeaderEnvelope, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		metrics.PublishErrors.Inc()
		p.logger.ErrorContext(ctx, "failed to marshal header announcement", logging.Error(err))
		return
	}

	msg := &messaging.Message{
		Subject: subject,
		Data:    data,
		Metadata: map[string]string{
			messaging.MetaSource:   env.Source,
			messaging.MetaEnvelope: env.ID,
		},
	}
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		msg.Metadata[messaging.MetaRequestID] = reqID
	}

	if err := p.publisher.PublishMsg(ctx, msg); err != nil {
		metrics.PublishErrors.Inc()
		p.logger.WarnContext(ctx, "failed to publish header announcement",
			logging.Source(env.Source), logging.Error(err))
	}
}

// ErrorKind classifies a processing error for metrics and API responses.
func ErrorKind(err error) string {
	var (
		keyErr   *headers.KeyError
		seqErr   *headers.SequenceError
		tokenErr *headers.TokenError
		parseErr *parser.Error
	)
	switch {
	case errors.As(err, &keyErr):
		return "key"
	case errors.As(err, &seqErr):
		return "sequence"
	case errors.As(err, &tokenErr):
		return "token"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "other"
	}
}

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/telhawk-systems/telhawk-csv/internal/config"
	"github.com/telhawk-systems/telhawk-csv/internal/dlq"
	"github.com/telhawk-systems/telhawk-csv/internal/logging"
	"github.com/telhawk-systems/telhawk-csv/internal/messaging"
	natsclient "github.com/telhawk-systems/telhawk-csv/internal/messaging/nats"
	"github.com/telhawk-systems/telhawk-csv/internal/pipeline"
	"github.com/telhawk-systems/telhawk-csv/internal/service"
	"github.com/telhawk-systems/telhawk-csv/internal/store"
)

// runtime holds the components shared by serve and the store-backed commands.
type runtime struct {
	store     store.Store
	publisher messaging.Publisher
	dlq       *dlq.Queue
	processor *service.Processor
}

func newRuntime(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*runtime, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	logger.Info("Header store ready", slog.String("backend", cfg.Store.Backend))

	rt := &runtime{store: st, publisher: messaging.NopPublisher{}}

	if cfg.NATS.Enabled {
		client, err := natsclient.NewClient(natsclient.ConfigFrom(cfg.NATS), logger)
		if err != nil {
			logger.Warn("NATS unavailable, continuing without header announcements", logging.Error(err))
		} else {
			rt.publisher = client
			logger.Info("Connected to NATS", slog.String("url", cfg.NATS.URL), slog.String("subject", cfg.NATS.Subject))
		}
	}

	if cfg.DLQ.Enabled {
		q, err := dlq.NewQueue(cfg.DLQ.BasePath, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.dlq = q
	}

	pl := pipeline.New(st,
		pipeline.WithPublisher(rt.publisher, cfg.NATS.Subject),
		pipeline.WithDLQ(rt.dlq),
		pipeline.WithLogger(logger),
	)
	rt.processor = service.NewProcessor(pl, cfg.Store.Backend, rt.publisher, rt.dlq)
	return rt, nil
}

// Close drains the broker connection, letting queued announcements go out,
// and closes the store.
func (r *runtime) Close() {
	if d, ok := r.publisher.(interface{ Drain() error }); ok {
		_ = d.Drain()
	} else {
		_ = r.publisher.Close()
	}
	_ = r.store.Close()
}

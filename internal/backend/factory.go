package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// summaryCacheSize bounds the summary cache; the ledger uses a single key.
const summaryCacheSize = 8

// Factory builds a ledger service on top of the configured store.
type Factory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentStorage)}
}

// Create opens the store, connects the optional event publisher and returns
// the wired service. An unreachable broker is logged and events are skipped.
func (f *Factory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store Store
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	opts := []ledger.Option{ledger.WithLogger(f.logger)}

	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		} else {
			amqpClient = client
			opts = append(opts, ledger.WithPublisher(client))
			f.logger.InfoContext(ctx, "Initialized AMQP publisher",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	var summaries *cache.LRUCache[core.Summary]
	if config.SummaryCacheTTL > 0 {
		summaries = cache.NewLRUCache[core.Summary](summaryCacheSize, config.SummaryCacheTTL)
		opts = append(opts, ledger.WithSummaryCache(summaries))
	}

	cleanup := func() error {
		var errs []error
		if amqpClient != nil {
			errs = append(errs, amqpClient.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}

	return &Result{
		Ledger:       ledger.NewService(store, opts...),
		Store:        store,
		SummaryCache: summaries,
		Cleanup:      cleanup,
	}, nil
}

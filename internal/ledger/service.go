// Package ledger is the entry point the shells use: it records, lists and
// removes transactions and serves summaries computed from a consistent
// snapshot of the store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
)

//go:generate mockgen -destination=mocks/mock_ledger.go -package=mocks -source=service.go Store,Publisher

// Store is the durable transaction ledger.
type Store interface {
	Insert(ctx context.Context, n core.NewTransaction) (int64, error)
	ListAll(ctx context.Context) ([]core.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// Stamper is implemented by stores that report their state cheaply. A
// cached summary is served only while the stamp it was computed from is
// current, so writes from other processes are seen at once.
type Stamper interface {
	Stamp(ctx context.Context) (core.Stamp, error)
}

// Publisher announces committed changes to other processes.
type Publisher interface {
	Publish(ctx context.Context, event *amqp.TransactionEvent) error
}

const summaryKey = "summary"

// Service serialises writes and keeps summaries consistent with them.
type Service struct {
	store     Store
	stamper   Stamper
	publisher Publisher
	summaries cache.Cache[core.Summary]
	logger    *applog.Logger

	mu    sync.RWMutex
	group singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher enables change events. A nil publisher disables them.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithSummaryCache caches summaries until the next write.
func WithSummaryCache(c cache.Cache[core.Summary]) Option {
	return func(s *Service) { s.summaries = c }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: applog.New(applog.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stamper, _ = store.(Stamper)
	s.logger = s.logger.WithComponent(applog.ComponentLedger)
	return s
}

// Record inserts a transaction and returns its id. Validation failures are
// returned unchanged so callers can re-prompt.
func (s *Service) Record(ctx context.Context, n core.NewTransaction) (int64, error) {
	s.mu.Lock()
	id, err := s.store.Insert(ctx, n)
	if err == nil {
		s.invalidate()
	}
	s.mu.Unlock()

	if err != nil {
		if !errors.Is(err, core.ErrValidation) {
			err = fmt.Errorf("record transaction: %w", err)
		}
		return 0, err
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(id, n.Kind.String(), n.Category, n.Amount.String(), n.Date.String()).
			ToSlice()...)

	s.publish(ctx, amqp.TransactionCreated, id)
	return id, nil
}

// Transactions returns a snapshot of every stored transaction.
func (s *Service) Transactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return records, nil
}

// Remove deletes id. Unknown ids are not an error.
func (s *Service) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	err := s.store.Delete(ctx, id)
	if err == nil {
		s.invalidate()
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("remove transaction %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Transaction removed",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)

	s.publish(ctx, amqp.TransactionDeleted, id)
	return nil
}

// Summary returns totals, balance and the expense breakdown for the whole
// ledger. Concurrent callers share one computation.
func (s *Service) Summary(ctx context.Context) (core.Summary, error) {
	key, cached := s.currentKey(ctx)
	if cached {
		if sum, ok := s.summaries.Get(key); ok {
			return cloneSummary(sum), nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		records, err := s.store.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		sum := report.Summarize(records)
		if s.summaries != nil {
			s.summaries.Set(s.keyFor(core.StampOf(records)), sum)
		}
		return sum, nil
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize ledger: %w", err)
	}
	return cloneSummary(v.(core.Summary)), nil
}

// currentKey returns the cache key for the ledger as it is now and whether
// the cache may be consulted.
func (s *Service) currentKey(ctx context.Context) (string, bool) {
	if s.summaries == nil {
		return summaryKey, false
	}
	if s.stamper == nil {
		return summaryKey, true
	}
	st, err := s.stamper.Stamp(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Ledger stamp unavailable, bypassing summary cache",
			applog.FieldOperation, applog.OpSummary,
			applog.FieldError, err)
		return summaryKey, false
	}
	return s.keyFor(st), true
}

func (s *Service) keyFor(st core.Stamp) string {
	if s.stamper == nil {
		return summaryKey
	}
	return fmt.Sprintf("%s:%d:%d", summaryKey, st.Count, st.MaxID)
}

// invalidate must be called with mu held for writing. Forgetting the flight
// keeps later Summary calls from joining one that started before the write.
func (s *Service) invalidate() {
	if s.summaries != nil {
		s.summaries.Purge()
	}
	s.group.Forget(summaryKey)
}

func (s *Service) publish(ctx context.Context, t amqp.EventType, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, amqp.NewTransactionEvent(t, id)); err != nil {
		// the change is committed; consumers catch up on the next event
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
	}
}

func cloneSummary(s core.Summary) core.Summary {
	s.ExpenseByCategory = maps.Clone(s.ExpenseByCategory)
	return s
}

package backend

import (
	"context"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// Store is what every ledger backend provides: the service's write and
// snapshot operations plus single reads and a readiness check.
type Store interface {
	ledger.Store
	Get(ctx context.Context, id int64) (core.Transaction, error)
	Ping(ctx context.Context) error
	Close() error
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the wired ledger and the resources behind it.
type Result struct {
	Ledger       *ledger.Service
	Store        Store
	SummaryCache *cache.LRUCache[core.Summary]
	Cleanup      CleanupFunc
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// Empty AMQPURL disables change events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Zero disables the summary cache.
	SummaryCacheTTL time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

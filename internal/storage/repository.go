package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable ledger. It keeps one connection open so
// writes are serialised.
type SQLiteRepository struct {
	db      *sql.DB
	dbPath  string
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		dbPath:  dbPath,
		queries: New(db),
	}

	if err := repo.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// Initialize ensures the schema exists. It is safe to call on every start.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	if err := RunMigrations(r.dbPath); err != nil {
		return &core.StorageError{Op: "initialize", Err: err}
	}
	slog.DebugContext(ctx, "Ledger schema ready", "path", r.dbPath)
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &core.StorageError{Op: "ping", Err: err}
	}
	return nil
}

// Insert validates and stores a transaction, returning its new id. The
// category is stored trimmed. The record is committed before Insert returns.
func (r *SQLiteRepository) Insert(ctx context.Context, n core.NewTransaction) (int64, error) {
	n = n.Normalized()
	if err := n.Validate(); err != nil {
		return 0, err
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Kind:     n.Kind.String(),
		Category: n.Category,
		Amount:   n.Amount.String(),
		Date:     n.Date.String(),
	})
	if err != nil {
		return 0, &core.StorageError{Op: "insert", Err: err}
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"kind", row.Kind,
		"category", row.Category,
		"amount", row.Amount,
		"date", row.Date)

	return row.ID, nil
}

// ListAll returns every stored transaction in id order. An empty ledger
// yields an empty, non-nil slice.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "list", Err: err}
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCore(row)
		if err != nil {
			return nil, &core.StorageError{Op: "list", Err: err}
		}
		out = append(out, t)
	}
	return out, nil
}

// Get returns a single transaction or core.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, &core.StorageError{Op: "get", Err: err}
	}
	t, err := toCore(row)
	if err != nil {
		return core.Transaction{}, &core.StorageError{Op: "get", Err: err}
	}
	return t, nil
}

// Stamp reports the current ledger state. It changes whenever any process
// inserts or deletes a record.
func (r *SQLiteRepository) Stamp(ctx context.Context) (core.Stamp, error) {
	row, err := r.queries.LedgerStamp(ctx)
	if err != nil {
		return core.Stamp{}, &core.StorageError{Op: "stamp", Err: err}
	}
	return core.Stamp{Count: int(row.Count), MaxID: row.MaxID}, nil
}

// Delete removes the transaction with id. Deleting a missing id is a no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return &core.StorageError{Op: "delete", Err: err}
	}
	if n == 0 {
		slog.DebugContext(ctx, "Delete of unknown transaction ignored", "id", id)
		return nil
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func toCore(row Transaction) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: parse amount %q: %w", row.ID, row.Amount, err)
	}
	date, err := time.Parse(core.DateLayout, row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: parse date %q: %w", row.ID, row.Date, err)
	}
	kind := core.Kind(row.Kind)
	if !kind.Valid() {
		return core.Transaction{}, fmt.Errorf("row %d: unknown kind %q", row.ID, row.Kind)
	}
	return core.Transaction{
		ID:       row.ID,
		Kind:     kind,
		Category: row.Category,
		Amount:   core.NewAmount(amount),
		Date:     core.Date{Time: date},
	}, nil
}

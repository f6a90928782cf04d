package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL for the transactions table.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Transaction is the row shape of the transactions table.
type Transaction struct {
	ID       int64
	Kind     string
	Category string
	Amount   string
	Date     string
}

type CreateTransactionParams struct {
	Kind     string
	Category string
	Amount   string
	Date     string
}

const createTransaction = `
INSERT INTO transactions (kind, category, amount, date)
VALUES (?, ?, ?, ?)
RETURNING id, kind, category, amount, date
`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction, arg.Kind, arg.Category, arg.Amount, arg.Date)
	var i Transaction
	err := row.Scan(&i.ID, &i.Kind, &i.Category, &i.Amount, &i.Date)
	return i, err
}

const getTransaction = `
SELECT id, kind, category, amount, date FROM transactions WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i Transaction
	err := row.Scan(&i.ID, &i.Kind, &i.Category, &i.Amount, &i.Date)
	return i, err
}

const listTransactions = `
SELECT id, kind, category, amount, date FROM transactions ORDER BY id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.Kind, &i.Category, &i.Amount, &i.Date); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const ledgerStamp = `
SELECT COUNT(*), COALESCE(MAX(id), 0) FROM transactions
`

type LedgerStampRow struct {
	Count int64
	MaxID int64
}

func (q *Queries) LedgerStamp(ctx context.Context) (LedgerStampRow, error) {
	row := q.db.QueryRowContext(ctx, ledgerStamp)
	var i LedgerStampRow
	err := row.Scan(&i.Count, &i.MaxID)
	return i, err
}

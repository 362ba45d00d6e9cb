package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_tx_runner.go -package=mocks inkwell/internal/storage TxRunner

import (
	"context"
	"database/sql"
	"fmt"
)

// Stores bundles the repositories bound to one connection or transaction.
type Stores struct {
	Items    ItemStore
	Projects ProjectStore
}

// TxRunner runs a unit of work atomically.
type TxRunner interface {
	// RunInTx calls fn with stores bound to a new transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	RunInTx(ctx context.Context, fn func(Stores) error) error
}

// UnitOfWork implements TxRunner over a SQLite database.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// RunInTx runs fn inside a transaction.
func (u *UnitOfWork) RunInTx(ctx context.Context, fn func(Stores) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stores := Stores{
		Items:    NewItemRepo(tx),
		Projects: NewProjectRepo(tx),
	}

	if err := fn(stores); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

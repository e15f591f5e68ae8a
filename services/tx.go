package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-engine/repositories"
)

// TxManager runs a unit of work atomically. The executor handed to fn is
// passed on to repository calls so every write lands in the same transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTxManager struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLTxManager(db *sql.DB, logger *slog.Logger) TxManager {
	return &sqlTxManager{db: db, logger: logger}
}

func (m *sqlTxManager) WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.ErrorContext(ctx, "transaction rollback failed", "error", rbErr, "cause", err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

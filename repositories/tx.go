package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager выполняет функцию внутри одной транзакции. Все последовательности
// проверка-затем-запись (eligibility + insert, transfer workflow, запись
// результатов) обязаны проходить через WithinTx, чтобы чтения и записи видели
// один снимок данных.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

func NewSQLTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	err = fn(tx)
	return err
}

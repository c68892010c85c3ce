package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// lockTimeout ограничивает ожидание FOR UPDATE внутри транзакций
// назначения и сверки. Истечение приходит как 55P03 и классифицируется
// IsRetryable как повод повторить попытку, а не как отказ.
const lockTimeout = 3 * time.Second

func setLockTimeout(ctx context.Context, tx pgx.Tx) error {
	query := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, query); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}
	return nil
}

package quota

import (
	"context"
	"database/sql"
	"time"
)

// PostgresLedger keeps the counters in the quota_usage table. The
// check-and-increment is a single guarded upsert: the DO UPDATE only fires
// while count is still under the limit, so concurrent increments can never
// push a counter past it.
type PostgresLedger struct {
	DB *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{DB: db}
}

func (l *PostgresLedger) CheckAndIncrement(ctx context.Context, workspaceID int64, accountKey, action string, day time.Time, limit int) (*Result, error) {
	if limit <= 0 {
		current, err := l.GetUsage(ctx, workspaceID, accountKey, action, day)
		if err != nil {
			return nil, err
		}
		return &Result{Allowed: false, Current: current, Limit: limit}, nil
	}

	query := `
        INSERT INTO quota_usage (workspace_id, account_key, action, usage_date, count, updated_at)
        VALUES ($1, $2, $3, $4, 1, NOW())
        ON CONFLICT (workspace_id, account_key, action, usage_date)
        DO UPDATE SET count = quota_usage.count + 1, updated_at = NOW()
        WHERE quota_usage.count < $5
        RETURNING count
    `
	var current int
	err := l.DB.QueryRowContext(ctx, query, workspaceID, accountKey, action, DayKey(day), limit).Scan(&current)
	if err == sql.ErrNoRows {
		// guard refused the update: counter is at the limit
		current, err = l.GetUsage(ctx, workspaceID, accountKey, action, day)
		if err != nil {
			return nil, err
		}
		return &Result{Allowed: false, Current: current, Limit: limit}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Result{Allowed: true, Current: current, Limit: limit}, nil
}

func (l *PostgresLedger) GetUsage(ctx context.Context, workspaceID int64, accountKey, action string, day time.Time) (int, error) {
	query := `
        SELECT count FROM quota_usage
        WHERE workspace_id=$1 AND account_key=$2 AND action=$3 AND usage_date=$4
    `
	var count int
	err := l.DB.QueryRowContext(ctx, query, workspaceID, accountKey, action, DayKey(day)).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

var _ Ledger = (*PostgresLedger)(nil)

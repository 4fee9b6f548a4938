package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/models"
)

// AppCountersRepository keeps global product counters
type AppCountersRepository interface {
	Increment(ctx context.Context, counter models.AppCounter, delta int64) error
	GetCounters(ctx context.Context) (map[models.AppCounter]int64, error)
}

type appCountersRepository struct {
	pool *pgxpool.Pool
}

// NewAppCountersRepository creates a new PostgreSQL counters repository
func NewAppCountersRepository(pool *pgxpool.Pool) AppCountersRepository {
	return &appCountersRepository{pool: pool}
}

func (r *appCountersRepository) Increment(ctx context.Context, counter models.AppCounter, delta int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO app_counters (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = app_counters.value + EXCLUDED.value`,
		string(counter), delta)
	return mapDBError(err, "increment_counter", nil)
}

func (r *appCountersRepository) GetCounters(ctx context.Context) (map[models.AppCounter]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, value FROM app_counters`)
	if err != nil {
		return nil, mapDBError(err, "get_counters", nil)
	}
	defer rows.Close()

	out := make(map[models.AppCounter]int64)
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, mapDBError(err, "scan_counter", nil)
		}
		out[models.AppCounter(name)] = value
	}
	return out, rows.Err()
}

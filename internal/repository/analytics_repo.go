package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsCounter struct {
	EventKey  string    `json:"event_key"`
	Count     int64     `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AnalyticsRepository struct {
	DB *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func (r *AnalyticsRepository) Increment(ctx context.Context, eventKey string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO analytics_counters (event_key, count, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (event_key) DO UPDATE
		SET count = analytics_counters.count + 1,
		    updated_at = NOW()
	`, eventKey)
	return err
}

func (r *AnalyticsRepository) ListCounters(ctx context.Context) ([]AnalyticsCounter, error) {
	rows, err := r.DB.Query(ctx, `SELECT event_key, count, updated_at FROM analytics_counters ORDER BY count DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AnalyticsCounter{}
	for rows.Next() {
		var c AnalyticsCounter
		if err := rows.Scan(&c.EventKey, &c.Count, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

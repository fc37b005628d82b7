package repository

import (
	"context"
	"database/sql"
)

// AnalyticsRepo appends rows to the analytics_events table.
type AnalyticsRepo struct{ DB *sql.DB }

func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{DB: db} }

// Append records one event with its raw JSON payload.
func (r *AnalyticsRepo) Append(ctx context.Context, eventName, payload string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO analytics_events (event_name, payload) VALUES (?,?)",
		eventName, payload)
	return err
}

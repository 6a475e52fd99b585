package repository

import (
	"context"
	"fmt"
	"time"

	"houseprice/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS prediction_logs (
	id              BIGSERIAL PRIMARY KEY,
	request_id      TEXT NOT NULL DEFAULT '',
	category        INTEGER NOT NULL,
	type            INTEGER NOT NULL,
	city            INTEGER NOT NULL,
	region          INTEGER NOT NULL,
	room_count      INTEGER NOT NULL,
	bathroom_count  INTEGER NOT NULL,
	size            DOUBLE PRECISION NOT NULL,
	features        vector(7) NOT NULL,
	log10_price     DOUBLE PRECISION NOT NULL,
	predicted_price BIGINT NOT NULL,
	model_version   TEXT NOT NULL DEFAULT '',
	latency_us      BIGINT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_prediction_logs_created_at ON prediction_logs (created_at DESC);
`

// SQLite keeps the pgvector text encoding ("[x,y,...]") in a TEXT column
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS prediction_logs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id      TEXT NOT NULL DEFAULT '',
	category        INTEGER NOT NULL,
	type            INTEGER NOT NULL,
	city            INTEGER NOT NULL,
	region          INTEGER NOT NULL,
	room_count      INTEGER NOT NULL,
	bathroom_count  INTEGER NOT NULL,
	size            REAL NOT NULL,
	features        TEXT NOT NULL,
	log10_price     REAL NOT NULL,
	predicted_price INTEGER NOT NULL,
	model_version   TEXT NOT NULL DEFAULT '',
	latency_us      INTEGER NOT NULL,
	created_at      DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prediction_logs_created_at ON prediction_logs (created_at DESC);
`

// PredictionRepository stores prediction logs in PostgreSQL or SQLite
type PredictionRepository struct {
	db     *sqlx.DB
	driver string
}

// NewPredictionRepository connects to the prediction log database and
// creates the schema if needed
func NewPredictionRepository(driver, dsn string, maxConn, maxIdleConn int) (*PredictionRepository, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// a single long-lived connection keeps in-memory databases alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(maxConn)
		db.SetMaxIdleConns(maxIdleConn)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(2 * time.Minute)
	}

	repo := &PredictionRepository{db: db, driver: driver}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database connection
func (r *PredictionRepository) Close() error {
	return r.db.Close()
}

func (r *PredictionRepository) migrate() error {
	schema := sqliteSchema
	if r.driver == "postgres" {
		schema = postgresSchema
	}
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create prediction_logs schema: %w", err)
	}
	return nil
}

// LogPrediction inserts one prediction log entry
func (r *PredictionRepository) LogPrediction(ctx context.Context, entry *model.PredictionLog) error {
	query := r.db.Rebind(`
		INSERT INTO prediction_logs (
			request_id, category, type, city, region, room_count, bathroom_count, size,
			features, log10_price, predicted_price, model_version, latency_us, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		entry.RequestID,
		entry.Category,
		entry.Type,
		entry.City,
		entry.Region,
		entry.RoomCount,
		entry.BathroomCount,
		entry.Size,
		entry.Features,
		entry.Log10Price,
		entry.PredictedPrice,
		entry.ModelVersion,
		entry.LatencyMicros,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log prediction: %w", err)
	}
	return nil
}

// ListRecent returns the most recent prediction logs, newest first
func (r *PredictionRepository) ListRecent(ctx context.Context, limit int) ([]model.PredictionLog, error) {
	query := r.db.Rebind(`
		SELECT
			id, request_id, category, type, city, region, room_count, bathroom_count, size,
			features, log10_price, predicted_price, model_version, latency_us, created_at
		FROM prediction_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	logs := []model.PredictionLog{}
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return logs, nil
}

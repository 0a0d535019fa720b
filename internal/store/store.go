package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists game run reports to PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS game_runs (
        id UUID PRIMARY KEY,
        game TEXT NOT NULL,
        status TEXT NOT NULL,
        scenario TEXT NOT NULL DEFAULT '',
        score INTEGER NOT NULL DEFAULT 0,
        error TEXT NOT NULL DEFAULT '',
        details JSONB NOT NULL DEFAULT '{}',
        started_at TIMESTAMPTZ NOT NULL,
        finished_at TIMESTAMPTZ NOT NULL
    );`,
	`CREATE TABLE IF NOT EXISTS bearing_rounds (
        run_id UUID NOT NULL REFERENCES game_runs (id) ON DELETE CASCADE,
        round_index INTEGER NOT NULL,
        instructions TEXT[] NOT NULL,
        start_x DOUBLE PRECISION NOT NULL,
        start_y DOUBLE PRECISION NOT NULL,
        target_x DOUBLE PRECISION NOT NULL,
        target_y DOUBLE PRECISION NOT NULL,
        score INTEGER NOT NULL,
        PRIMARY KEY (run_id, round_index)
    );`,
	`CREATE INDEX IF NOT EXISTS game_runs_started_at_idx ON game_runs (started_at DESC);`,
}

// EnsureSchema creates the run history tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

const sqlInsertRun = `
        INSERT INTO game_runs (id, game, status, scenario, score, error, details, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `

var roundColumns = []string{"run_id", "round_index", "instructions", "start_x", "start_y", "target_x", "target_y", "score"}

// SaveBearingReport stores a direction game run and all of its rounds in one
// transaction.
func (s *Store) SaveBearingReport(ctx context.Context, report *schemas.BearingReport) error {
	details, err := json.Marshal(struct {
		Threshold int `json:"threshold"`
	}{report.Threshold})
	if err != nil {
		return fmt.Errorf("failed to encode run details: %w", err)
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sqlInsertRun,
			report.RunID, string(schemas.GameBearing), string(report.Status), "",
			report.FinalScore, report.Error, string(details),
			report.StartedAt.UTC(), report.FinishedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		return s.persistRounds(ctx, tx, report.RunID, report.Rounds)
	})
}

func (s *Store) persistRounds(ctx context.Context, tx pgx.Tx, runID string, rounds []schemas.BearingRound) error {
	if len(rounds) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(rounds))
	for i, r := range rounds {
		instructions := r.Instructions
		if instructions == nil {
			instructions = []string{}
		}
		rows[i] = []interface{}{
			runID, r.Index, instructions,
			r.Start.X, r.Start.Y, r.Target.X, r.Target.Y,
			r.Score,
		}
	}

	copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"bearing_rounds"}, roundColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy rounds: %w", err)
	}
	if int(copyCount) != len(rounds) {
		return fmt.Errorf("mismatch in copied rounds count: expected %d, got %d", len(rounds), copyCount)
	}
	return nil
}

// circleDetails is the JSONB payload of a circle run.
type circleDetails struct {
	Box        schemas.BoundingBox `json:"box"`
	Center     schemas.Coordinate  `json:"center"`
	Radius     float64             `json:"radius"`
	PointCount int                 `json:"point_count"`
	Biased     bool                `json:"biased"`
	ResultText string              `json:"result_text,omitempty"`
}

// SaveCircleReport stores one circle drawing pass.
func (s *Store) SaveCircleReport(ctx context.Context, report *schemas.CircleReport) error {
	details, err := json.Marshal(circleDetails{
		Box:        report.Box,
		Center:     report.Center,
		Radius:     report.Radius,
		PointCount: report.PointCount,
		Biased:     report.Biased,
		ResultText: report.ResultText,
	})
	if err != nil {
		return fmt.Errorf("failed to encode run details: %w", err)
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sqlInsertRun,
			report.RunID, string(schemas.GameCircle), string(report.Status), report.Scenario,
			0, report.Error, string(details),
			report.StartedAt.UTC(), report.FinishedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const sqlListRuns = `
        SELECT id::text, game, status, scenario, score, error, started_at, finished_at
        FROM game_runs
        WHERE $1 = '' OR game = $1
        ORDER BY started_at DESC
        LIMIT $2;
    `

// ListRuns returns the most recent runs, newest first. An empty game lists
// both games.
func (s *Store) ListRuns(ctx context.Context, game schemas.GameKind, limit int) ([]schemas.RunSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.pool.Query(ctx, sqlListRuns, string(game), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []schemas.RunSummary
	for rows.Next() {
		var (
			r              schemas.RunSummary
			gameStr, state string
		)
		if err := rows.Scan(&r.RunID, &gameStr, &state, &r.Scenario, &r.Score, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		r.Game = schemas.GameKind(gameStr)
		r.Status = schemas.RunStatus(state)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return runs, nil
}

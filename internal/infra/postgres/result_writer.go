package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-room-service/internal/domain"
)

// ResultWriter persists completed session results as JSONB rows.
type ResultWriter struct {
	pool *pgxpool.Pool
}

func NewResultWriter(pool *pgxpool.Pool) *ResultWriter {
	return &ResultWriter{pool: pool}
}

func (w *ResultWriter) SaveResult(ctx context.Context, result domain.SessionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = w.pool.Exec(ctx,
		`INSERT INTO session_results (room_code, quiz_id, ended_at, data)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (room_code) DO UPDATE SET data = EXCLUDED.data, ended_at = EXCLUDED.ended_at`,
		result.RoomCode, result.QuizID, result.EndedAt, raw)
	if err != nil {
		return fmt.Errorf("insert session result: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
)

type completionRepository struct {
	db *DB
}

// NewCompletionRepository constructs a pgx-backed exercise attempt log.
func NewCompletionRepository(db *DB) repository.CompletionRepository {
	return &completionRepository{db: db}
}

const insertCompletionSQL = `
INSERT INTO exercise_completions (user_id, exercise_id, video_id, score, is_correct, time_taken, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, exercise_id, video_id, score, is_correct, time_taken, completed_at`

func (r *completionRepository) Insert(ctx context.Context, completion *entity.ExerciseCompletion) (*entity.ExerciseCompletion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.db.q(ctx).QueryRow(ctx, insertCompletionSQL,
		completion.UserID,
		completion.ExerciseID,
		completion.VideoID,
		completion.Score,
		completion.IsCorrect,
		completion.TimeTaken,
		completion.CompletedAt,
	)

	var out entity.ExerciseCompletion
	err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.ExerciseID,
		&out.VideoID,
		&out.Score,
		&out.IsCorrect,
		&out.TimeTaken,
		&out.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	return &out, nil
}

const countCompletionsSQL = `
SELECT COUNT(*)
FROM exercise_completions
WHERE user_id = $1 AND video_id = $2`

func (r *completionRepository) CountByVideo(ctx context.Context, userID, videoID int64) (int64, error) {
	var count int64
	err := r.db.q(ctx).QueryRow(ctx, countCompletionsSQL, userID, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}

const completionStatsSQL = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE is_correct),
       COALESCE(SUM(score), 0),
       MAX(completed_at)
FROM exercise_completions
WHERE user_id = $1 AND video_id = $2`

func (r *completionRepository) StatsByVideo(ctx context.Context, userID, videoID int64) (*repository.CompletionStats, error) {
	var stats repository.CompletionStats
	err := r.db.q(ctx).QueryRow(ctx, completionStatsSQL, userID, videoID).Scan(
		&stats.Total,
		&stats.Correct,
		&stats.ScoreSum,
		&stats.LastAttempt,
	)
	if err != nil {
		return nil, fmt.Errorf("completion stats: %w", err)
	}
	return &stats, nil
}

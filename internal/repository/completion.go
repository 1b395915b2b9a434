package repository

import (
	"context"
	"time"

	"github.com/eslsoft/vidlingo/internal/entity"
)

// CompletionStats aggregates attempt counts for one (user, video) pair.
type CompletionStats struct {
	Total       int64
	Correct     int64
	ScoreSum    float64
	LastAttempt *time.Time
}

// CompletionRepository persists the append-only exercise attempt log.
type CompletionRepository interface {
	// Insert appends one attempt row. Rows are immutable once written.
	Insert(ctx context.Context, completion *entity.ExerciseCompletion) (*entity.ExerciseCompletion, error)

	// CountByVideo counts attempts for one (user, video) pair.
	CountByVideo(ctx context.Context, userID, videoID int64) (int64, error)

	// StatsByVideo returns attempt counts, average score and the most recent
	// completion timestamp for one (user, video) pair.
	StatsByVideo(ctx context.Context, userID, videoID int64) (*CompletionStats, error)
}

package repository

import (
	"context"
	"time"

	"github.com/eslsoft/vidlingo/internal/entity"
)

// VideoProgressRepository persists per-(user, video) watch state and the
// cached learning rollup.
type VideoProgressRepository interface {
	// Get returns the row or entity.ErrVideoProgressNotFound.
	Get(ctx context.Context, userID, videoID int64) (*entity.VideoProgress, error)

	// UpsertWatch inserts or updates watch position by natural key. It never
	// touches is_completed.
	UpsertWatch(ctx context.Context, userID, videoID int64, watchedSeconds int32, lastSegmentID *int64, now time.Time) (*entity.VideoProgress, error)

	// MarkCompleted flags the video as completed, creating the row if absent
	// and preserving existing watch and rollup fields otherwise. Completion is
	// one-way; nothing clears the flag.
	MarkCompleted(ctx context.Context, userID, videoID int64, now time.Time) (*entity.VideoProgress, error)

	// SetRollup overwrites the cached counters. When no row exists the call is
	// a no-op: rows are created lazily by watch and completion writes only.
	SetRollup(ctx context.Context, userID, videoID int64, completedExercises, masteredWords int32, now time.Time) error
}

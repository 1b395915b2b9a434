package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
)

type videoProgressRepository struct {
	db *DB
}

// NewVideoProgressRepository constructs a pgx-backed watch state store.
func NewVideoProgressRepository(db *DB) repository.VideoProgressRepository {
	return &videoProgressRepository{db: db}
}

const videoProgressColumns = `id, user_id, video_id, watched_seconds, last_segment_watched, is_completed, completed_exercises, mastered_words, last_watched, created_at, updated_at`

const getVideoProgressSQL = `
SELECT ` + videoProgressColumns + `
FROM video_progress
WHERE user_id = $1 AND video_id = $2`

func (r *videoProgressRepository) Get(ctx context.Context, userID, videoID int64) (*entity.VideoProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.db.q(ctx).QueryRow(ctx, getVideoProgressSQL, userID, videoID)
	progress, err := scanVideoProgress(row)
	if err != nil {
		return nil, noRows(err, entity.ErrVideoProgressNotFound)
	}
	return progress, nil
}

// upsertWatchSQL deliberately leaves is_completed out of the update list:
// watch pings must never clear a completion flag set earlier.
const upsertWatchSQL = `
INSERT INTO video_progress (user_id, video_id, watched_seconds, last_segment_watched, is_completed, completed_exercises, mastered_words, last_watched, created_at, updated_at)
VALUES ($1, $2, $3, $4, FALSE, 0, 0, $5, $5, $5)
ON CONFLICT (user_id, video_id) DO UPDATE SET
    watched_seconds = EXCLUDED.watched_seconds,
    last_segment_watched = COALESCE(EXCLUDED.last_segment_watched, video_progress.last_segment_watched),
    last_watched = EXCLUDED.last_watched,
    updated_at = EXCLUDED.updated_at
RETURNING ` + videoProgressColumns

func (r *videoProgressRepository) UpsertWatch(ctx context.Context, userID, videoID int64, watchedSeconds int32, lastSegmentID *int64, now time.Time) (*entity.VideoProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.db.q(ctx).QueryRow(ctx, upsertWatchSQL, userID, videoID, watchedSeconds, lastSegmentID, now)
	progress, err := scanVideoProgress(row)
	if err != nil {
		return nil, fmt.Errorf("upsert watch progress: %w", err)
	}
	return progress, nil
}

const markCompletedSQL = `
INSERT INTO video_progress (user_id, video_id, watched_seconds, last_segment_watched, is_completed, completed_exercises, mastered_words, last_watched, created_at, updated_at)
VALUES ($1, $2, 0, NULL, TRUE, 0, 0, $3, $3, $3)
ON CONFLICT (user_id, video_id) DO UPDATE SET
    is_completed = TRUE,
    last_watched = EXCLUDED.last_watched,
    updated_at   = EXCLUDED.updated_at
RETURNING ` + videoProgressColumns

func (r *videoProgressRepository) MarkCompleted(ctx context.Context, userID, videoID int64, now time.Time) (*entity.VideoProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.db.q(ctx).QueryRow(ctx, markCompletedSQL, userID, videoID, now)
	progress, err := scanVideoProgress(row)
	if err != nil {
		return nil, fmt.Errorf("mark video completed: %w", err)
	}
	return progress, nil
}

const setRollupSQL = `
UPDATE video_progress
SET completed_exercises = $3,
    mastered_words      = $4,
    updated_at          = $5
WHERE user_id = $1 AND video_id = $2`

func (r *videoProgressRepository) SetRollup(ctx context.Context, userID, videoID int64, completedExercises, masteredWords int32, now time.Time) error {
	_, err := r.db.q(ctx).Exec(ctx, setRollupSQL, userID, videoID, completedExercises, masteredWords, now)
	if err != nil {
		return fmt.Errorf("set rollup: %w", err)
	}
	return nil
}

func scanVideoProgress(row rowScanner) (*entity.VideoProgress, error) {
	var progress entity.VideoProgress
	err := row.Scan(
		&progress.ID,
		&progress.UserID,
		&progress.VideoID,
		&progress.WatchedSeconds,
		&progress.LastSegmentWatched,
		&progress.IsCompleted,
		&progress.CompletedExercises,
		&progress.MasteredWords,
		&progress.LastWatched,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

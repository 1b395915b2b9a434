package repository

import (
	"context"
	"fmt"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
)

type userProgressRepository struct {
	db *DB
}

// NewUserProgressRepository constructs a pgx-backed user progress store.
func NewUserProgressRepository(db *DB) repository.UserProgressRepository {
	return &userProgressRepository{db: db}
}

const getUserProgressSQL = `
SELECT user_id, total_xp, level, current_streak, last_activity, created_at, updated_at
FROM user_progress
WHERE user_id = $1`

func (r *userProgressRepository) Get(ctx context.Context, userID int64) (*entity.UserProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.db.q(ctx).QueryRow(ctx, getUserProgressSQL, userID)
	progress, err := scanUserProgress(row)
	if err != nil {
		return nil, noRows(err, entity.ErrUserProgressNotFound)
	}
	return progress, nil
}

// addXPSQL applies the delta in one statement so concurrent awards never lose
// updates, and rederives the level from the same expression that clamps the
// total at zero.
const addXPSQL = `
INSERT INTO user_progress (user_id, total_xp, level, current_streak, last_activity, created_at, updated_at)
VALUES ($1, GREATEST($2, 0), GREATEST($2, 0) / 1000 + 1, 1, now(), now(), now())
ON CONFLICT (user_id) DO UPDATE SET
    total_xp      = GREATEST(user_progress.total_xp + $2, 0),
    level         = GREATEST(user_progress.total_xp + $2, 0) / 1000 + 1,
    last_activity = now(),
    updated_at    = now()
RETURNING user_id, total_xp, level, current_streak, last_activity, created_at, updated_at`

func (r *userProgressRepository) AddXP(ctx context.Context, userID int64, delta int64) (*entity.UserProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.db.q(ctx).QueryRow(ctx, addXPSQL, userID, delta)
	progress, err := scanUserProgress(row)
	if err != nil {
		return nil, fmt.Errorf("add xp: %w", err)
	}
	return progress, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserProgress(row rowScanner) (*entity.UserProgress, error) {
	var progress entity.UserProgress
	err := row.Scan(
		&progress.UserID,
		&progress.TotalXP,
		&progress.Level,
		&progress.CurrentStreak,
		&progress.LastActivity,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

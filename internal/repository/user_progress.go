package repository

import (
	"context"

	"github.com/eslsoft/vidlingo/internal/entity"
)

// UserProgressRepository abstracts persistence for per-user XP state.
type UserProgressRepository interface {
	// Get returns the user's progress row or entity.ErrUserProgressNotFound.
	Get(ctx context.Context, userID int64) (*entity.UserProgress, error)

	// AddXP applies an XP delta atomically at the store: the row is created on
	// first award, otherwise total_xp is incremented in place and the level
	// rederived in the same statement, so concurrent awards never lose updates.
	AddXP(ctx context.Context, userID int64, delta int64) (*entity.UserProgress, error)
}

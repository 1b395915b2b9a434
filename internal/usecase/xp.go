package usecase

import (
	"context"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
)

// XP awarded for completing a whole segment, independent of exercise scores.
const segmentCompletionXP = 50

// XPLedger applies experience awards and reads cumulative progress.
type XPLedger interface {
	Award(ctx context.Context, userID int64, delta int64) (*entity.UserProgress, error)
	GetProgress(ctx context.Context, userID int64) (*entity.UserProgress, error)
}

// NewXPLedger wires the ledger onto the user progress store.
func NewXPLedger(repo repository.UserProgressRepository) XPLedger {
	return &xpLedger{repo: repo}
}

type xpLedger struct {
	repo repository.UserProgressRepository
}

func (l *xpLedger) Award(ctx context.Context, userID int64, delta int64) (*entity.UserProgress, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	return l.repo.AddXP(ctx, userID, delta)
}

func (l *xpLedger) GetProgress(ctx context.Context, userID int64) (*entity.UserProgress, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	return l.repo.Get(ctx, userID)
}

// ExerciseXP scores one attempt: 10 base, +20 when correct, +15 for scores
// above 80 or +10 above 60, +5 when answered in under 30 seconds. Never less
// than the base, no upper cap.
func ExerciseXP(score float64, isCorrect bool, timeTaken *int32) int64 {
	xp := int64(10)
	if isCorrect {
		xp += 20
	}
	switch {
	case score > 80:
		xp += 15
	case score > 60:
		xp += 10
	}
	if timeTaken != nil && *timeTaken < 30 {
		xp += 5
	}
	return xp
}

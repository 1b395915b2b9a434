package entity

import "time"

// ExerciseCompletion is one attempt at an exercise, real or synthetic. Rows
// are append-only: once written they are never updated, only counted.
type ExerciseCompletion struct {
	ID          int64
	UserID      int64
	ExerciseID  int64
	VideoID     int64
	Score       float64
	IsCorrect   bool
	TimeTaken   *int32
	CompletedAt time.Time
}

// Validate checks caller-supplied attempt fields at the engine boundary.
func (c *ExerciseCompletion) Validate() error {
	if c.Score < 0 {
		return ErrInvalidScore
	}
	return nil
}

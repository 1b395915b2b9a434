package entity

import "errors"

// Domain errors for the progress engine and related aggregates. Store-level
// failures are propagated unmodified and are deliberately absent here.
var (
	ErrUserProgressNotFound  = errors.New("user progress not found")
	ErrVideoNotFound         = errors.New("video not found")
	ErrSegmentNotFound       = errors.New("segment not found")
	ErrExerciseNotFound      = errors.New("exercise not found")
	ErrVideoProgressNotFound = errors.New("video progress not found")
	ErrVocabularyNotFound    = errors.New("vocabulary entry not found")
	ErrInvalidUserID         = errors.New("invalid user ID")
	ErrInvalidMasteryLevel   = errors.New("mastery level must be between 0 and 5")
	ErrInvalidScore          = errors.New("score must not be negative")
	ErrInvalidWatchedSeconds = errors.New("watched seconds must not be negative")
)

package entity

import "time"

// VideoProgress is a user's watch state for one video plus a cached rollup of
// learning counters. CompletedExercises and MasteredWords are derived from
// ExerciseCompletion and UserVocabulary rows and must always be recomputed in
// full, never incremented, so replayed or concurrent events cannot drift them.
type VideoProgress struct {
	ID                 int64
	UserID             int64
	VideoID            int64
	WatchedSeconds     int32
	LastSegmentWatched *int64
	IsCompleted        bool
	CompletedExercises int32
	MasteredWords      int32
	LastWatched        time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// VideoLearningStatus is the fresh per-video aggregate computed straight from
// source rows, bypassing the cached rollup.
type VideoLearningStatus struct {
	VideoID            int64
	CompletedExercises int64
	MasteredWords      int64
	TotalSegments      int64
	ProgressPercent    int32
	LastCompletedAt    *time.Time
}

// VideoStatsSummary combines watch progress, exercise accuracy and the
// vocabulary breakdown for one (user, video) pair.
type VideoStatsSummary struct {
	VideoID        int64
	WatchedSeconds int32
	IsCompleted    bool
	LastWatched    time.Time
	TotalAttempts  int64
	CorrectCount   int64
	PassRate       float64
	AverageScore   float64
	Vocabulary     VocabularyBreakdown
}

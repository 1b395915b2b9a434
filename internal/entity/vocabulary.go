package entity

import "time"

// UserVocabulary is a user's mastery record for one word occurrence in one
// video. Mastery is scoped per (user, word, video), not globally per word, so
// the same word met in two videos tracks independently.
type UserVocabulary struct {
	ID           int64
	UserID       int64
	WordID       int64
	VideoID      int64
	Mastery      MasteryLevel
	NextReview   *time.Time
	LastReviewed time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Due reports whether the entry belongs in the review queue at the given
// instant. Entries that were never scheduled are always due.
func (v *UserVocabulary) Due(now time.Time) bool {
	return v.NextReview == nil || !v.NextReview.After(now)
}

// VocabularyBreakdown buckets a user's per-video vocabulary by retention
// strength.
type VocabularyBreakdown struct {
	Mastered   int32
	InProgress int32
	New        int32
}

// Total returns the number of tracked entries across all buckets.
func (b VocabularyBreakdown) Total() int32 {
	return b.Mastered + b.InProgress + b.New
}

package usecase

import (
	"time"

	"github.com/eslsoft/vidlingo/internal/entity"
)

// Review intervals per mastery level, in days. Anything outside 1-5 (including
// brand-new entries at level 0) falls back to one day.
const defaultReviewDays = 1

var reviewDays = map[entity.MasteryLevel]int{
	1: 1,
	2: 3,
	3: 7,
	4: 14,
	5: 30,
}

// NextReviewAt computes when an entry at the given mastery level should
// resurface in the review queue. Deterministic given from.
func NextReviewAt(level entity.MasteryLevel, from time.Time) time.Time {
	days, ok := reviewDays[level]
	if !ok {
		days = defaultReviewDays
	}
	return from.AddDate(0, 0, days)
}

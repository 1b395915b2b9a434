package entity

import "time"

// XPPerLevel is the amount of experience that advances a user one level.
const XPPerLevel = 1000

// UserProgress tracks a user's cumulative experience and activity. One row per
// user, created lazily on the first XP award.
type UserProgress struct {
	UserID        int64
	TotalXP       int64
	Level         int32
	CurrentStreak int32
	LastActivity  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LevelForXP derives the level for a cumulative XP total. Level is always a
// pure function of XP and never stored independently.
func LevelForXP(totalXP int64) int32 {
	if totalXP < 0 {
		totalXP = 0
	}
	return int32(totalXP/XPPerLevel) + 1
}

// ZeroProgress returns the empty state reported for users without a progress
// row yet.
func ZeroProgress(userID int64) *UserProgress {
	return &UserProgress{UserID: userID, Level: 1}
}

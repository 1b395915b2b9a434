package httpapi

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/usecase"
)

// XP carries no required binding: a zero delta is a legitimate no-op award.
type addXPRequest struct {
	XP int64 `json:"xp"`
}

type recordMasteryRequest struct {
	WordID       int64 `json:"wordId" binding:"required"`
	VideoID      int64 `json:"videoId" binding:"required"`
	MasteryLevel int16 `json:"masteryLevel"`
}

type recordExerciseRequest struct {
	ExerciseID int64   `json:"exerciseId" binding:"required"`
	Score      float64 `json:"score"`
	IsCorrect  bool    `json:"isCorrect"`
	TimeTaken  *int32  `json:"timeTaken,omitempty"`
}

type watchProgressRequest struct {
	WatchedSeconds int32  `json:"watchedSeconds"`
	LastSegmentID  *int64 `json:"lastSegmentId,omitempty"`
}

type userProgressResponse struct {
	UserID        int64     `json:"userId"`
	TotalXP       int64     `json:"totalXp"`
	Level         int32     `json:"level"`
	CurrentStreak int32     `json:"currentStreak"`
	LastActivity  time.Time `json:"lastActivity"`
}

type vocabularyResponse struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"userId"`
	WordID       int64      `json:"wordId"`
	VideoID      int64      `json:"videoId"`
	MasteryLevel int16      `json:"masteryLevel"`
	NextReview   *time.Time `json:"nextReview,omitempty"`
	LastReviewed time.Time  `json:"lastReviewed"`
}

type vocabularyListResponse struct {
	Items []vocabularyResponse `json:"items"`
	Total int64                `json:"total"`
}

type exerciseResultResponse struct {
	CompletionID int64                `json:"completionId"`
	VideoID      int64                `json:"videoId"`
	XPAwarded    int64                `json:"xpAwarded"`
	Progress     userProgressResponse `json:"progress"`
}

type segmentResultResponse struct {
	ExercisesCompleted int                  `json:"exercisesCompleted"`
	WordsReviewed      int                  `json:"wordsReviewed"`
	XPAwarded          int64                `json:"xpAwarded"`
	Progress           userProgressResponse `json:"progress"`
}

type videoProgressResponse struct {
	VideoID            int64     `json:"videoId"`
	WatchedSeconds     int32     `json:"watchedSeconds"`
	LastSegmentWatched *int64    `json:"lastSegmentWatched,omitempty"`
	IsCompleted        bool      `json:"isCompleted"`
	CompletedExercises int32     `json:"completedExercises"`
	MasteredWords      int32     `json:"masteredWords"`
	LastWatched        time.Time `json:"lastWatched"`
}

type learningStatusResponse struct {
	VideoID            int64      `json:"videoId"`
	CompletedExercises int64      `json:"completedExercises"`
	MasteredWords      int64      `json:"masteredWords"`
	TotalSegments      int64      `json:"totalSegments"`
	ProgressPercent    int32      `json:"progressPercent"`
	LastCompletedAt    *time.Time `json:"lastCompletedAt,omitempty"`
}

type statsSummaryResponse struct {
	VideoID        int64                 `json:"videoId"`
	WatchedSeconds int32                 `json:"watchedSeconds"`
	IsCompleted    bool                  `json:"isCompleted"`
	LastWatched    time.Time             `json:"lastWatched"`
	TotalAttempts  int64                 `json:"totalAttempts"`
	CorrectCount   int64                 `json:"correctCount"`
	PassRate       float64               `json:"passRate"`
	AverageScore   float64               `json:"averageScore"`
	Vocabulary     vocabularyBreakdownTO `json:"vocabulary"`
}

type vocabularyBreakdownTO struct {
	Mastered   int32 `json:"mastered"`
	InProgress int32 `json:"inProgress"`
	New        int32 `json:"new"`
}

func toUserProgress(p *entity.UserProgress) userProgressResponse {
	return userProgressResponse{
		UserID:        p.UserID,
		TotalXP:       p.TotalXP,
		Level:         p.Level,
		CurrentStreak: p.CurrentStreak,
		LastActivity:  p.LastActivity,
	}
}

func toVocabulary(v *entity.UserVocabulary) vocabularyResponse {
	return vocabularyResponse{
		ID:           v.ID,
		UserID:       v.UserID,
		WordID:       v.WordID,
		VideoID:      v.VideoID,
		MasteryLevel: int16(v.Mastery),
		NextReview:   v.NextReview,
		LastReviewed: v.LastReviewed,
	}
}

func toVocabularyList(items []*entity.UserVocabulary, total int64) vocabularyListResponse {
	return vocabularyListResponse{
		Items: lo.Map(items, func(v *entity.UserVocabulary, _ int) vocabularyResponse {
			return toVocabulary(v)
		}),
		Total: total,
	}
}

func toExerciseResult(r *usecase.ExerciseResult) exerciseResultResponse {
	return exerciseResultResponse{
		CompletionID: r.Completion.ID,
		VideoID:      r.Completion.VideoID,
		XPAwarded:    r.XPAwarded,
		Progress:     toUserProgress(r.Progress),
	}
}

func toSegmentResult(r *usecase.SegmentResult) segmentResultResponse {
	return segmentResultResponse{
		ExercisesCompleted: r.ExercisesCompleted,
		WordsReviewed:      r.WordsReviewed,
		XPAwarded:          r.XPAwarded,
		Progress:           toUserProgress(r.Progress),
	}
}

func toVideoProgress(p *entity.VideoProgress) videoProgressResponse {
	return videoProgressResponse{
		VideoID:            p.VideoID,
		WatchedSeconds:     p.WatchedSeconds,
		LastSegmentWatched: p.LastSegmentWatched,
		IsCompleted:        p.IsCompleted,
		CompletedExercises: p.CompletedExercises,
		MasteredWords:      p.MasteredWords,
		LastWatched:        p.LastWatched,
	}
}

func toLearningStatus(s *entity.VideoLearningStatus) learningStatusResponse {
	return learningStatusResponse{
		VideoID:            s.VideoID,
		CompletedExercises: s.CompletedExercises,
		MasteredWords:      s.MasteredWords,
		TotalSegments:      s.TotalSegments,
		ProgressPercent:    s.ProgressPercent,
		LastCompletedAt:    s.LastCompletedAt,
	}
}

func toStatsSummary(s *entity.VideoStatsSummary) statsSummaryResponse {
	return statsSummaryResponse{
		VideoID:        s.VideoID,
		WatchedSeconds: s.WatchedSeconds,
		IsCompleted:    s.IsCompleted,
		LastWatched:    s.LastWatched,
		TotalAttempts:  s.TotalAttempts,
		CorrectCount:   s.CorrectCount,
		PassRate:       s.PassRate,
		AverageScore:   s.AverageScore,
		Vocabulary: vocabularyBreakdownTO{
			Mastered:   s.Vocabulary.Mastered,
			InProgress: s.Vocabulary.InProgress,
			New:        s.Vocabulary.New,
		},
	}
}

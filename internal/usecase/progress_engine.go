package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
)

// ExerciseResult reports the effects of recording one scored attempt.
type ExerciseResult struct {
	Completion *entity.ExerciseCompletion
	Progress   *entity.UserProgress
	XPAwarded  int64
}

// SegmentResult reports the effects of completing one segment.
type SegmentResult struct {
	ExercisesCompleted int
	WordsReviewed      int
	XPAwarded          int64
	Progress           *entity.UserProgress
}

// ProgressEngine turns discrete learner events into durable progress state:
// XP and levels, per-word spaced-repetition mastery and per-video rollups.
// Compound operations group their writes in one store transaction.
type ProgressEngine interface {
	GetUserProgress(ctx context.Context, userID int64) (*entity.UserProgress, error)
	UpdateUserXP(ctx context.Context, userID int64, delta int64) (*entity.UserProgress, error)

	RecordVocabularyMastery(ctx context.Context, userID, wordID, videoID int64, level entity.MasteryLevel) (*entity.UserVocabulary, error)
	GetDueVocabulary(ctx context.Context, userID int64) ([]*entity.UserVocabulary, error)
	ListVocabulary(ctx context.Context, query *repository.ListVocabularyQuery) ([]*entity.UserVocabulary, int64, error)

	RecordExerciseCompletion(ctx context.Context, userID, exerciseID int64, score float64, isCorrect bool, timeTaken *int32) (*ExerciseResult, error)

	UpdateVideoWatchProgress(ctx context.Context, userID, videoID int64, watchedSeconds int32, lastSegmentID *int64) (*entity.VideoProgress, error)
	MarkVideoCompleted(ctx context.Context, userID, videoID int64) (*entity.VideoProgress, error)
	CompleteSegment(ctx context.Context, userID, videoID, segmentID int64) (*SegmentResult, error)

	GetVideoLearningStatus(ctx context.Context, userID, videoID int64) (*entity.VideoLearningStatus, error)
	GetVideoStatsSummary(ctx context.Context, userID, videoID int64) (*entity.VideoStatsSummary, error)
}

// NewProgressEngine wires the engine's stores and collaborators with default
// behaviour.
func NewProgressEngine(
	tx repository.TxRunner,
	progress repository.UserProgressRepository,
	vocabulary repository.VocabularyRepository,
	completions repository.CompletionRepository,
	videos repository.VideoProgressRepository,
	catalog repository.CatalogRepository,
) ProgressEngine {
	e := &progressEngine{
		tx:          tx,
		vocabulary:  vocabulary,
		completions: completions,
		videos:      videos,
		catalog:     catalog,
		ledger:      NewXPLedger(progress),
		clock:       time.Now,
	}
	// The aggregator reads the engine's clock through the engine so that a
	// replaced clock covers rollup stamps too.
	e.aggregator = NewVideoStatsAggregator(completions, vocabulary, videos, func() time.Time {
		return e.clock()
	})
	return e
}

type progressEngine struct {
	tx          repository.TxRunner
	vocabulary  repository.VocabularyRepository
	completions repository.CompletionRepository
	videos      repository.VideoProgressRepository
	catalog     repository.CatalogRepository
	ledger      XPLedger
	aggregator  VideoStatsAggregator
	clock       func() time.Time
}

func (e *progressEngine) GetUserProgress(ctx context.Context, userID int64) (*entity.UserProgress, error) {
	progress, err := e.ledger.GetProgress(ctx, userID)
	if errors.Is(err, entity.ErrUserProgressNotFound) {
		return entity.ZeroProgress(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func (e *progressEngine) UpdateUserXP(ctx context.Context, userID int64, delta int64) (*entity.UserProgress, error) {
	return e.ledger.Award(ctx, userID, delta)
}

func (e *progressEngine) RecordVocabularyMastery(ctx context.Context, userID, wordID, videoID int64, level entity.MasteryLevel) (*entity.UserVocabulary, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}

	now := e.clock()
	next := NextReviewAt(level, now)
	voc := &entity.UserVocabulary{
		UserID:       userID,
		WordID:       wordID,
		VideoID:      videoID,
		Mastery:      level,
		NextReview:   &next,
		LastReviewed: now,
	}

	var result *entity.UserVocabulary
	err := e.tx.InTx(ctx, func(ctx context.Context) error {
		upserted, created, err := e.vocabulary.Upsert(ctx, voc)
		if err != nil {
			return err
		}
		result = upserted
		if created {
			return nil
		}
		// Only reviews of an existing entry can move it across the mastered
		// threshold, so the rollup refresh is skipped on first insert.
		return e.aggregator.Recompute(ctx, userID, videoID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *progressEngine) GetDueVocabulary(ctx context.Context, userID int64) ([]*entity.UserVocabulary, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	return e.vocabulary.ListDue(ctx, userID, e.clock())
}

func (e *progressEngine) ListVocabulary(ctx context.Context, query *repository.ListVocabularyQuery) ([]*entity.UserVocabulary, int64, error) {
	return e.vocabulary.List(ctx, query)
}

func (e *progressEngine) RecordExerciseCompletion(ctx context.Context, userID, exerciseID int64, score float64, isCorrect bool, timeTaken *int32) (*ExerciseResult, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}

	completion := &entity.ExerciseCompletion{
		UserID:      userID,
		ExerciseID:  exerciseID,
		Score:       score,
		IsCorrect:   isCorrect,
		TimeTaken:   timeTaken,
		CompletedAt: e.clock(),
	}
	if err := completion.Validate(); err != nil {
		return nil, err
	}

	// Resolve the owning video before any mutation is attempted.
	videoID, err := e.catalog.ExerciseVideo(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	completion.VideoID = videoID

	result := &ExerciseResult{XPAwarded: ExerciseXP(score, isCorrect, timeTaken)}
	err = e.tx.InTx(ctx, func(ctx context.Context) error {
		inserted, err := e.completions.Insert(ctx, completion)
		if err != nil {
			return err
		}
		result.Completion = inserted

		if err := e.aggregator.Recompute(ctx, userID, videoID); err != nil {
			return err
		}

		progress, err := e.ledger.Award(ctx, userID, result.XPAwarded)
		if err != nil {
			return err
		}
		result.Progress = progress
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *progressEngine) UpdateVideoWatchProgress(ctx context.Context, userID, videoID int64, watchedSeconds int32, lastSegmentID *int64) (*entity.VideoProgress, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if watchedSeconds < 0 {
		return nil, entity.ErrInvalidWatchedSeconds
	}
	return e.videos.UpsertWatch(ctx, userID, videoID, watchedSeconds, lastSegmentID, e.clock())
}

func (e *progressEngine) MarkVideoCompleted(ctx context.Context, userID, videoID int64) (*entity.VideoProgress, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	return e.videos.MarkCompleted(ctx, userID, videoID, e.clock())
}

func (e *progressEngine) CompleteSegment(ctx context.Context, userID, videoID, segmentID int64) (*SegmentResult, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}

	segment, err := e.catalog.GetSegment(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	if segment.VideoID != videoID {
		return nil, entity.ErrSegmentNotFound
	}

	exercises, err := e.catalog.SegmentExercises(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	words, err := e.catalog.SegmentWords(ctx, segmentID)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	result := &SegmentResult{XPAwarded: segmentCompletionXP}
	err = e.tx.InTx(ctx, func(ctx context.Context) error {
		// Presence completions: auto-marked correct with score zero, recorded
		// in the same log as real scored attempts.
		for _, exercise := range exercises {
			completion := &entity.ExerciseCompletion{
				UserID:      userID,
				ExerciseID:  exercise.ID,
				VideoID:     videoID,
				Score:       0,
				IsCorrect:   true,
				CompletedAt: now,
			}
			if _, err := e.completions.Insert(ctx, completion); err != nil {
				return err
			}
		}
		result.ExercisesCompleted = len(exercises)

		for _, word := range words {
			if err := e.reviewSegmentWord(ctx, userID, videoID, word.WordID, now); err != nil {
				return err
			}
		}
		result.WordsReviewed = len(words)

		progress, err := e.ledger.Award(ctx, userID, segmentCompletionXP)
		if err != nil {
			return err
		}
		result.Progress = progress
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reviewSegmentWord bumps an existing vocabulary entry one mastery step or
// starts a new one at level 1, rescheduling the next review either way.
func (e *progressEngine) reviewSegmentWord(ctx context.Context, userID, videoID, wordID int64, now time.Time) error {
	level := entity.MasteryLevel(1)
	existing, err := e.vocabulary.Get(ctx, userID, wordID, videoID)
	switch {
	case err == nil:
		level = existing.Mastery.Bump()
	case errors.Is(err, entity.ErrVocabularyNotFound):
	default:
		return err
	}

	next := NextReviewAt(level, now)
	_, _, err = e.vocabulary.Upsert(ctx, &entity.UserVocabulary{
		UserID:       userID,
		WordID:       wordID,
		VideoID:      videoID,
		Mastery:      level,
		NextReview:   &next,
		LastReviewed: now,
	})
	return err
}

func (e *progressEngine) GetVideoLearningStatus(ctx context.Context, userID, videoID int64) (*entity.VideoLearningStatus, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}

	stats, err := e.completions.StatsByVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	mastered, err := e.vocabulary.CountMastered(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	segments, err := e.catalog.CountSegments(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var percent int32
	if segments > 0 {
		percent = int32(math.Round(float64(stats.Total) / float64(segments) * 100))
	}

	return &entity.VideoLearningStatus{
		VideoID:            videoID,
		CompletedExercises: stats.Total,
		MasteredWords:      mastered,
		TotalSegments:      segments,
		ProgressPercent:    percent,
		LastCompletedAt:    stats.LastAttempt,
	}, nil
}

func (e *progressEngine) GetVideoStatsSummary(ctx context.Context, userID, videoID int64) (*entity.VideoStatsSummary, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}

	watch, err := e.videos.Get(ctx, userID, videoID)
	if errors.Is(err, entity.ErrVideoProgressNotFound) {
		watch = &entity.VideoProgress{UserID: userID, VideoID: videoID}
	} else if err != nil {
		return nil, err
	}

	stats, err := e.completions.StatsByVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	entries, err := e.vocabulary.ListByVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	// Guard the empty-attempt case by substituting 1 for the denominator.
	denominator := stats.Total
	if denominator == 0 {
		denominator = 1
	}

	return &entity.VideoStatsSummary{
		VideoID:        videoID,
		WatchedSeconds: watch.WatchedSeconds,
		IsCompleted:    watch.IsCompleted,
		LastWatched:    watch.LastWatched,
		TotalAttempts:  stats.Total,
		CorrectCount:   stats.Correct,
		PassRate:       float64(stats.Correct) / float64(denominator),
		AverageScore:   stats.ScoreSum / float64(denominator),
		Vocabulary: entity.VocabularyBreakdown{
			Mastered: int32(lo.CountBy(entries, func(v *entity.UserVocabulary) bool {
				return v.Mastery.Mastered()
			})),
			InProgress: int32(lo.CountBy(entries, func(v *entity.UserVocabulary) bool {
				return v.Mastery > entity.MasteryNew && !v.Mastery.Mastered()
			})),
			New: int32(lo.CountBy(entries, func(v *entity.UserVocabulary) bool {
				return v.Mastery == entity.MasteryNew
			})),
		},
	}, nil
}

package usecase

import (
	"context"
	"time"

	"github.com/eslsoft/vidlingo/internal/repository"
)

// VideoStatsAggregator refreshes the cached per-video rollup from source rows.
type VideoStatsAggregator interface {
	// Recompute recounts exercise completions and mastered vocabulary for the
	// (user, video) pair and overwrites the cached counters. It never
	// increments; a full recount keeps the rollup correct under replayed or
	// concurrent events. Callers needing atomicity with surrounding writes run
	// it inside a TxRunner unit of work.
	Recompute(ctx context.Context, userID, videoID int64) error
}

// NewVideoStatsAggregator wires the aggregator onto its source stores. The
// clock provides the updated_at stamp for rollup writes.
func NewVideoStatsAggregator(
	completions repository.CompletionRepository,
	vocabulary repository.VocabularyRepository,
	videos repository.VideoProgressRepository,
	clock func() time.Time,
) VideoStatsAggregator {
	return &videoStatsAggregator{
		completions: completions,
		vocabulary:  vocabulary,
		videos:      videos,
		clock:       clock,
	}
}

type videoStatsAggregator struct {
	completions repository.CompletionRepository
	vocabulary  repository.VocabularyRepository
	videos      repository.VideoProgressRepository
	clock       func() time.Time
}

func (a *videoStatsAggregator) Recompute(ctx context.Context, userID, videoID int64) error {
	exercises, err := a.completions.CountByVideo(ctx, userID, videoID)
	if err != nil {
		return err
	}
	mastered, err := a.vocabulary.CountMastered(ctx, userID, videoID)
	if err != nil {
		return err
	}
	// SetRollup is a no-op when no video progress row exists yet; rows are
	// created lazily by watch and completion writes only.
	return a.videos.SetRollup(ctx, userID, videoID, int32(exercises), int32(mastered), a.clock())
}

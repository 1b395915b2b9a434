package repository

import (
	"context"

	"github.com/eslsoft/vidlingo/internal/entity"
)

// CatalogRepository exposes read-only lookups into the video catalog owned by
// the transcription pipeline. The progress engine never mutates these rows.
type CatalogRepository interface {
	// ExerciseVideo resolves an exercise to its owning video, or
	// entity.ErrExerciseNotFound.
	ExerciseVideo(ctx context.Context, exerciseID int64) (int64, error)

	// GetSegment returns one segment or entity.ErrSegmentNotFound.
	GetSegment(ctx context.Context, segmentID int64) (*entity.VideoSegment, error)

	// SegmentExercises returns the exercises attached to a segment.
	SegmentExercises(ctx context.Context, segmentID int64) ([]*entity.VideoExercise, error)

	// SegmentWords returns the word occurrences attached to a segment.
	SegmentWords(ctx context.Context, segmentID int64) ([]*entity.VideoWord, error)

	// CountSegments counts a video's segments.
	CountSegments(ctx context.Context, videoID int64) (int64, error)
}

package repository

import (
	"context"
	"fmt"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
)

type catalogRepository struct {
	db *DB
}

// NewCatalogRepository constructs read-only lookups into the video catalog.
func NewCatalogRepository(db *DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

const exerciseVideoSQL = `
SELECT video_id
FROM video_exercises
WHERE id = $1`

func (r *catalogRepository) ExerciseVideo(ctx context.Context, exerciseID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var videoID int64
	err := r.db.q(ctx).QueryRow(ctx, exerciseVideoSQL, exerciseID).Scan(&videoID)
	if err != nil {
		return 0, noRows(err, entity.ErrExerciseNotFound)
	}
	return videoID, nil
}

const getSegmentSQL = `
SELECT id, video_id, segment_index, start_ms, end_ms, text
FROM video_segments
WHERE id = $1`

func (r *catalogRepository) GetSegment(ctx context.Context, segmentID int64) (*entity.VideoSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var segment entity.VideoSegment
	err := r.db.q(ctx).QueryRow(ctx, getSegmentSQL, segmentID).Scan(
		&segment.ID,
		&segment.VideoID,
		&segment.Index,
		&segment.StartMS,
		&segment.EndMS,
		&segment.Text,
	)
	if err != nil {
		return nil, noRows(err, entity.ErrSegmentNotFound)
	}
	return &segment, nil
}

const segmentExercisesSQL = `
SELECT id, video_id, segment_id, kind, prompt
FROM video_exercises
WHERE segment_id = $1
ORDER BY id ASC`

func (r *catalogRepository) SegmentExercises(ctx context.Context, segmentID int64) ([]*entity.VideoExercise, error) {
	rows, err := r.db.q(ctx).Query(ctx, segmentExercisesSQL, segmentID)
	if err != nil {
		return nil, fmt.Errorf("list segment exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*entity.VideoExercise
	for rows.Next() {
		var ex entity.VideoExercise
		if err := rows.Scan(&ex.ID, &ex.VideoID, &ex.SegmentID, &ex.Kind, &ex.Prompt); err != nil {
			return nil, err
		}
		exercises = append(exercises, &ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

const segmentWordsSQL = `
SELECT id, video_id, segment_id, word_id, text
FROM video_words
WHERE segment_id = $1
ORDER BY id ASC`

func (r *catalogRepository) SegmentWords(ctx context.Context, segmentID int64) ([]*entity.VideoWord, error) {
	rows, err := r.db.q(ctx).Query(ctx, segmentWordsSQL, segmentID)
	if err != nil {
		return nil, fmt.Errorf("list segment words: %w", err)
	}
	defer rows.Close()

	var words []*entity.VideoWord
	for rows.Next() {
		var word entity.VideoWord
		if err := rows.Scan(&word.ID, &word.VideoID, &word.SegmentID, &word.WordID, &word.Text); err != nil {
			return nil, err
		}
		words = append(words, &word)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

const countSegmentsSQL = `
SELECT COUNT(*)
FROM video_segments
WHERE video_id = $1`

func (r *catalogRepository) CountSegments(ctx context.Context, videoID int64) (int64, error) {
	var count int64
	err := r.db.q(ctx).QueryRow(ctx, countSegmentsSQL, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count segments: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
	"github.com/eslsoft/vidlingo/pkg/filterquery"
)

type vocabularyRepository struct {
	db *DB
}

// NewVocabularyRepository constructs a pgx-backed vocabulary mastery store.
func NewVocabularyRepository(db *DB) repository.VocabularyRepository {
	return &vocabularyRepository{db: db}
}

const vocabularyColumns = `id, user_id, word_id, video_id, mastery_level, next_review, last_reviewed, created_at, updated_at`

const getVocabularySQL = `
SELECT ` + vocabularyColumns + `
FROM user_vocabulary
WHERE user_id = $1 AND word_id = $2 AND video_id = $3`

func (r *vocabularyRepository) Get(ctx context.Context, userID, wordID, videoID int64) (*entity.UserVocabulary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.db.q(ctx).QueryRow(ctx, getVocabularySQL, userID, wordID, videoID)
	voc, err := scanVocabulary(row)
	if err != nil {
		return nil, noRows(err, entity.ErrVocabularyNotFound)
	}
	return voc, nil
}

// upsertVocabularySQL writes by natural key in one statement. xmax = 0 holds
// exactly when the row was freshly inserted, which is how callers learn
// whether the write created a new entry.
const upsertVocabularySQL = `
INSERT INTO user_vocabulary (user_id, word_id, video_id, mastery_level, next_review, last_reviewed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6, $6)
ON CONFLICT (user_id, word_id, video_id) DO UPDATE SET
    mastery_level = EXCLUDED.mastery_level,
    next_review   = EXCLUDED.next_review,
    last_reviewed = EXCLUDED.last_reviewed,
    updated_at    = EXCLUDED.updated_at
RETURNING ` + vocabularyColumns + `, (xmax = 0) AS inserted`

func (r *vocabularyRepository) Upsert(ctx context.Context, voc *entity.UserVocabulary) (*entity.UserVocabulary, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	row := r.db.q(ctx).QueryRow(ctx, upsertVocabularySQL,
		voc.UserID, voc.WordID, voc.VideoID, voc.Mastery, voc.NextReview, voc.LastReviewed)

	var (
		out      entity.UserVocabulary
		inserted bool
	)
	err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.WordID,
		&out.VideoID,
		&out.Mastery,
		&out.NextReview,
		&out.LastReviewed,
		&out.CreatedAt,
		&out.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert vocabulary: %w", err)
	}
	return &out, inserted, nil
}

const listDueSQL = `
SELECT ` + vocabularyColumns + `
FROM user_vocabulary
WHERE user_id = $1 AND (next_review IS NULL OR next_review <= $2)
ORDER BY next_review ASC NULLS FIRST, id ASC`

func (r *vocabularyRepository) ListDue(ctx context.Context, userID int64, now time.Time) ([]*entity.UserVocabulary, error) {
	rows, err := r.db.q(ctx).Query(ctx, listDueSQL, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list due vocabulary: %w", err)
	}
	return collectVocabulary(rows)
}

// listVocabularyParams is the filterquery binding target for List. Field
// names line up with vocabularySchema's destinations.
type listVocabularyParams struct {
	MasteryMin *int16
	MasteryMax *int16
	VideoID    *int64
	WordID     *int64
	DueBefore  *time.Time

	OrderClause string
}

var vocabularySchema = filterquery.Schema{
	Filter: map[string]filterquery.Field{
		"mastery_level": {
			Kind: filterquery.KindNumber,
			Ops: map[filterquery.Op]string{
				filterquery.OpGTE: "MasteryMin",
				filterquery.OpLTE: "MasteryMax",
			},
		},
		"video_id": {
			Kind: filterquery.KindNumber,
			Ops:  map[filterquery.Op]string{filterquery.OpEQ: "VideoID"},
		},
		"word_id": {
			Kind: filterquery.KindNumber,
			Ops:  map[filterquery.Op]string{filterquery.OpEQ: "WordID"},
		},
		"next_review": {
			Kind: filterquery.KindTimestamp,
			Ops:  map[filterquery.Op]string{filterquery.OpLTE: "DueBefore"},
		},
	},
	Order: filterquery.OrderSchema{
		Default:  "next_review",
		TieBreak: "id",
		Columns: map[string]string{
			"next_review":   "next_review",
			"mastery_level": "mastery_level",
			"last_reviewed": "last_reviewed",
			"created_at":    "created_at",
			"id":            "id",
		},
	},
}

func (r *vocabularyRepository) List(ctx context.Context, query *repository.ListVocabularyQuery) ([]*entity.UserVocabulary, int64, error) {
	var params listVocabularyParams
	if err := filterquery.Bind(&query.FilterOrder, &params, vocabularySchema); err != nil {
		return nil, 0, err
	}

	where := []string{"user_id = $1"}
	args := []any{query.UserID}
	addCond := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if params.MasteryMin != nil {
		addCond("mastery_level >= $%d", *params.MasteryMin)
	}
	if params.MasteryMax != nil {
		addCond("mastery_level <= $%d", *params.MasteryMax)
	}
	if params.VideoID != nil {
		addCond("video_id = $%d", *params.VideoID)
	}
	if params.WordID != nil {
		addCond("word_id = $%d", *params.WordID)
	}
	if params.DueBefore != nil {
		addCond("next_review <= $%d", *params.DueBefore)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := "SELECT COUNT(*) FROM user_vocabulary WHERE " + cond
	if err := r.db.q(ctx).QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vocabulary: %w", err)
	}

	listSQL := fmt.Sprintf(
		"SELECT %s FROM user_vocabulary WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		vocabularyColumns, cond, params.OrderClause, len(args)+1, len(args)+2)
	args = append(args, query.PageSize, query.Offset())

	rows, err := r.db.q(ctx).Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list vocabulary: %w", err)
	}
	items, err := collectVocabulary(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

const listByVideoSQL = `
SELECT ` + vocabularyColumns + `
FROM user_vocabulary
WHERE user_id = $1 AND video_id = $2
ORDER BY id ASC`

func (r *vocabularyRepository) ListByVideo(ctx context.Context, userID, videoID int64) ([]*entity.UserVocabulary, error) {
	rows, err := r.db.q(ctx).Query(ctx, listByVideoSQL, userID, videoID)
	if err != nil {
		return nil, fmt.Errorf("list vocabulary by video: %w", err)
	}
	return collectVocabulary(rows)
}

const countMasteredSQL = `
SELECT COUNT(*)
FROM user_vocabulary
WHERE user_id = $1 AND video_id = $2 AND mastery_level >= $3`

func (r *vocabularyRepository) CountMastered(ctx context.Context, userID, videoID int64) (int64, error) {
	var count int64
	err := r.db.q(ctx).QueryRow(ctx, countMasteredSQL, userID, videoID, entity.MasteredThreshold).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mastered vocabulary: %w", err)
	}
	return count, nil
}

func scanVocabulary(row rowScanner) (*entity.UserVocabulary, error) {
	var voc entity.UserVocabulary
	err := row.Scan(
		&voc.ID,
		&voc.UserID,
		&voc.WordID,
		&voc.VideoID,
		&voc.Mastery,
		&voc.NextReview,
		&voc.LastReviewed,
		&voc.CreatedAt,
		&voc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &voc, nil
}

func collectVocabulary(rows pgx.Rows) ([]*entity.UserVocabulary, error) {
	defer rows.Close()

	var items []*entity.UserVocabulary
	for rows.Next() {
		voc, err := scanVocabulary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, voc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

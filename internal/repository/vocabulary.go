package repository

import (
	"context"
	"time"

	"github.com/eslsoft/vidlingo/internal/entity"
)

// ListVocabularyQuery holds parameters for listing a user's vocabulary.
type ListVocabularyQuery struct {
	Pagination
	FilterOrder

	UserID int64
}

// VocabularyRepository abstracts persistence for per-video vocabulary mastery.
// Writes go through Upsert, keyed by the (user, word, video) natural key with
// store-native conflict handling rather than a separate existence check.
type VocabularyRepository interface {
	// Get returns one entry or entity.ErrVocabularyNotFound.
	Get(ctx context.Context, userID, wordID, videoID int64) (*entity.UserVocabulary, error)

	// Upsert inserts or updates by natural key in a single statement and
	// reports whether a new row was created.
	Upsert(ctx context.Context, voc *entity.UserVocabulary) (*entity.UserVocabulary, bool, error)

	// ListDue returns entries whose next review has elapsed or was never set,
	// never-reviewed entries first, then by next_review ascending.
	ListDue(ctx context.Context, userID int64, now time.Time) ([]*entity.UserVocabulary, error)

	// List returns a filtered, ordered page of the user's vocabulary.
	List(ctx context.Context, query *ListVocabularyQuery) ([]*entity.UserVocabulary, int64, error)

	// ListByVideo returns all entries for one (user, video) pair.
	ListByVideo(ctx context.Context, userID, videoID int64) ([]*entity.UserVocabulary, error)

	// CountMastered counts entries at or above the mastered threshold for one
	// (user, video) pair.
	CountMastered(ctx context.Context, userID, videoID int64) (int64, error)
}

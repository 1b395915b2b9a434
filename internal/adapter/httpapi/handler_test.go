package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
	"github.com/eslsoft/vidlingo/internal/usecase"
)

type stubEngine struct {
	getUserProgress func(userID int64) (*entity.UserProgress, error)
	updateUserXP    func(userID, delta int64) (*entity.UserProgress, error)
	recordMastery   func(userID, wordID, videoID int64, level entity.MasteryLevel) (*entity.UserVocabulary, error)
	dueVocabulary   func(userID int64) ([]*entity.UserVocabulary, error)
	listVocabulary  func(query *repository.ListVocabularyQuery) ([]*entity.UserVocabulary, int64, error)
	recordExercise  func(userID, exerciseID int64, score float64, isCorrect bool, timeTaken *int32) (*usecase.ExerciseResult, error)
	updateWatch     func(userID, videoID int64, watchedSeconds int32, lastSegmentID *int64) (*entity.VideoProgress, error)
	markCompleted   func(userID, videoID int64) (*entity.VideoProgress, error)
	completeSegment func(userID, videoID, segmentID int64) (*usecase.SegmentResult, error)
	learningStatus  func(userID, videoID int64) (*entity.VideoLearningStatus, error)
	statsSummary    func(userID, videoID int64) (*entity.VideoStatsSummary, error)
}

func (s *stubEngine) GetUserProgress(_ context.Context, userID int64) (*entity.UserProgress, error) {
	return s.getUserProgress(userID)
}

func (s *stubEngine) UpdateUserXP(_ context.Context, userID int64, delta int64) (*entity.UserProgress, error) {
	return s.updateUserXP(userID, delta)
}

func (s *stubEngine) RecordVocabularyMastery(_ context.Context, userID, wordID, videoID int64, level entity.MasteryLevel) (*entity.UserVocabulary, error) {
	return s.recordMastery(userID, wordID, videoID, level)
}

func (s *stubEngine) GetDueVocabulary(_ context.Context, userID int64) ([]*entity.UserVocabulary, error) {
	return s.dueVocabulary(userID)
}

func (s *stubEngine) ListVocabulary(_ context.Context, query *repository.ListVocabularyQuery) ([]*entity.UserVocabulary, int64, error) {
	return s.listVocabulary(query)
}

func (s *stubEngine) RecordExerciseCompletion(_ context.Context, userID, exerciseID int64, score float64, isCorrect bool, timeTaken *int32) (*usecase.ExerciseResult, error) {
	return s.recordExercise(userID, exerciseID, score, isCorrect, timeTaken)
}

func (s *stubEngine) UpdateVideoWatchProgress(_ context.Context, userID, videoID int64, watchedSeconds int32, lastSegmentID *int64) (*entity.VideoProgress, error) {
	return s.updateWatch(userID, videoID, watchedSeconds, lastSegmentID)
}

func (s *stubEngine) MarkVideoCompleted(_ context.Context, userID, videoID int64) (*entity.VideoProgress, error) {
	return s.markCompleted(userID, videoID)
}

func (s *stubEngine) CompleteSegment(_ context.Context, userID, videoID, segmentID int64) (*usecase.SegmentResult, error) {
	return s.completeSegment(userID, videoID, segmentID)
}

func (s *stubEngine) GetVideoLearningStatus(_ context.Context, userID, videoID int64) (*entity.VideoLearningStatus, error) {
	return s.learningStatus(userID, videoID)
}

func (s *stubEngine) GetVideoStatsSummary(_ context.Context, userID, videoID int64) (*entity.VideoStatsSummary, error) {
	return s.statsSummary(userID, videoID)
}

func newTestRouter(engine usecase.ProgressEngine) http.Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRouter(NewProgressHandler(engine, logger), logger)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetUserProgress(t *testing.T) {
	engine := &stubEngine{
		getUserProgress: func(userID int64) (*entity.UserProgress, error) {
			return &entity.UserProgress{UserID: userID, TotalXP: 1500, Level: 2}, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodGet, "/api/v1/users/7/progress", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp userProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.UserID)
	assert.Equal(t, int64(1500), resp.TotalXP)
	assert.Equal(t, int32(2), resp.Level)
}

func TestGetUserProgressBadID(t *testing.T) {
	engine := &stubEngine{}
	rec := doRequest(t, newTestRouter(engine), http.MethodGet, "/api/v1/users/abc/progress", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddXP(t *testing.T) {
	var gotDelta int64
	engine := &stubEngine{
		updateUserXP: func(userID, delta int64) (*entity.UserProgress, error) {
			gotDelta = delta
			return &entity.UserProgress{UserID: userID, TotalXP: delta, Level: entity.LevelForXP(delta)}, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPost, "/api/v1/users/3/xp", `{"xp": 250}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(250), gotDelta)
}

func TestAddXPZeroDelta(t *testing.T) {
	var gotDelta int64 = -1
	engine := &stubEngine{
		updateUserXP: func(userID, delta int64) (*entity.UserProgress, error) {
			gotDelta = delta
			return &entity.UserProgress{UserID: userID, Level: 1}, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPost, "/api/v1/users/3/xp", `{"xp": 0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), gotDelta)
}

func TestAddXPMalformedBody(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubEngine{}), http.MethodPost, "/api/v1/users/3/xp", `{"xp": "lots"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "invalid_argument", envelope.Error.Code)
	assert.Equal(t, "invalid request body", envelope.Error.Message)
}

func TestRecordMasteryValidationError(t *testing.T) {
	engine := &stubEngine{
		recordMastery: func(_, _, _ int64, _ entity.MasteryLevel) (*entity.UserVocabulary, error) {
			return nil, entity.ErrInvalidMasteryLevel
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPost, "/api/v1/users/3/vocabulary",
		`{"wordId": 10, "videoId": 4, "masteryLevel": 9}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "invalid_argument", envelope.Error.Code)
}

func TestRecordMastery(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	next := now.AddDate(0, 0, 7)
	engine := &stubEngine{
		recordMastery: func(userID, wordID, videoID int64, level entity.MasteryLevel) (*entity.UserVocabulary, error) {
			return &entity.UserVocabulary{
				ID: 1, UserID: userID, WordID: wordID, VideoID: videoID,
				Mastery: level, NextReview: &next, LastReviewed: now,
			}, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPost, "/api/v1/users/3/vocabulary",
		`{"wordId": 10, "videoId": 4, "masteryLevel": 3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp vocabularyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.WordID)
	assert.Equal(t, int16(3), resp.MasteryLevel)
	require.NotNil(t, resp.NextReview)
	assert.True(t, resp.NextReview.Equal(next))
}

func TestListVocabularyForwardsQuery(t *testing.T) {
	var got *repository.ListVocabularyQuery
	engine := &stubEngine{
		listVocabulary: func(query *repository.ListVocabularyQuery) ([]*entity.UserVocabulary, int64, error) {
			got = query
			return nil, 0, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodGet,
		"/api/v1/users/5/vocabulary?filter=mastery_level%20%3E%3D%203&order_by=mastery_level%20desc&page_no=2&page_size=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.UserID)
	assert.Equal(t, "mastery_level >= 3", got.Filter)
	assert.Equal(t, "mastery_level desc", got.OrderBy)
	assert.Equal(t, int32(2), got.PageNo)
	assert.Equal(t, int32(10), got.PageSize)
}

func TestRecordExerciseUnknownExercise(t *testing.T) {
	engine := &stubEngine{
		recordExercise: func(_, _ int64, _ float64, _ bool, _ *int32) (*usecase.ExerciseResult, error) {
			return nil, entity.ErrExerciseNotFound
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPost, "/api/v1/users/3/exercises",
		`{"exerciseId": 999, "score": 80, "isCorrect": true}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordExercise(t *testing.T) {
	engine := &stubEngine{
		recordExercise: func(userID, exerciseID int64, score float64, isCorrect bool, timeTaken *int32) (*usecase.ExerciseResult, error) {
			return &usecase.ExerciseResult{
				Completion: &entity.ExerciseCompletion{ID: 11, UserID: userID, ExerciseID: exerciseID, VideoID: 4, Score: score, IsCorrect: isCorrect},
				Progress:   &entity.UserProgress{UserID: userID, TotalXP: 45, Level: 1},
				XPAwarded:  45,
			}, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPost, "/api/v1/users/3/exercises",
		`{"exerciseId": 21, "score": 85, "isCorrect": true, "timeTaken": 25}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp exerciseResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(11), resp.CompletionID)
	assert.Equal(t, int64(4), resp.VideoID)
	assert.Equal(t, int64(45), resp.XPAwarded)
}

func TestCompleteSegment(t *testing.T) {
	engine := &stubEngine{
		completeSegment: func(userID, videoID, segmentID int64) (*usecase.SegmentResult, error) {
			return &usecase.SegmentResult{
				ExercisesCompleted: 3,
				WordsReviewed:      2,
				XPAwarded:          50,
				Progress:           &entity.UserProgress{UserID: userID, TotalXP: 50, Level: 1},
			}, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPost,
		"/api/v1/users/3/videos/4/segments/9/complete", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp segmentResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ExercisesCompleted)
	assert.Equal(t, 2, resp.WordsReviewed)
	assert.Equal(t, int64(50), resp.XPAwarded)
}

func TestCompleteSegmentWrongVideo(t *testing.T) {
	engine := &stubEngine{
		completeSegment: func(_, _, _ int64) (*usecase.SegmentResult, error) {
			return nil, entity.ErrSegmentNotFound
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPost,
		"/api/v1/users/3/videos/4/segments/9/complete", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateWatchProgress(t *testing.T) {
	var gotSegment *int64
	engine := &stubEngine{
		updateWatch: func(userID, videoID int64, watchedSeconds int32, lastSegmentID *int64) (*entity.VideoProgress, error) {
			gotSegment = lastSegmentID
			return &entity.VideoProgress{UserID: userID, VideoID: videoID, WatchedSeconds: watchedSeconds, LastSegmentWatched: lastSegmentID}, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodPut, "/api/v1/users/3/videos/4/watch",
		`{"watchedSeconds": 120, "lastSegmentId": 6}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotSegment)
	assert.Equal(t, int64(6), *gotSegment)
	var resp videoProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int32(120), resp.WatchedSeconds)
}

func TestGetStatsSummary(t *testing.T) {
	engine := &stubEngine{
		statsSummary: func(userID, videoID int64) (*entity.VideoStatsSummary, error) {
			return &entity.VideoStatsSummary{
				VideoID:       videoID,
				TotalAttempts: 4,
				CorrectCount:  2,
				PassRate:      0.5,
				AverageScore:  60,
				Vocabulary:    entity.VocabularyBreakdown{Mastered: 2, InProgress: 1, New: 1},
			}, nil
		},
	}
	rec := doRequest(t, newTestRouter(engine), http.MethodGet, "/api/v1/users/3/videos/4/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp statsSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.TotalAttempts)
	assert.InDelta(t, 0.5, resp.PassRate, 1e-9)
	assert.Equal(t, int32(2), resp.Vocabulary.Mastered)
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubEngine{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

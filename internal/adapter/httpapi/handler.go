package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
	"github.com/eslsoft/vidlingo/internal/usecase"
)

const _maxPageSize = 10000

// ProgressHandler exposes the progress engine over HTTP.
type ProgressHandler struct {
	engine usecase.ProgressEngine
	logger *logrus.Logger
}

// NewProgressHandler creates the HTTP handler for progress routes.
func NewProgressHandler(engine usecase.ProgressEngine, logger *logrus.Logger) *ProgressHandler {
	return &ProgressHandler{engine: engine, logger: logger}
}

// GetUserProgress handles GET /users/:userID/progress.
func (h *ProgressHandler) GetUserProgress(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		respondError(c, err)
		return
	}
	progress, err := h.engine.GetUserProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserProgress(progress))
}

// AddXP handles POST /users/:userID/xp.
func (h *ProgressHandler) AddXP(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		respondError(c, err)
		return
	}
	var req addXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errBadRequestBody)
		return
	}
	progress, err := h.engine.UpdateUserXP(c.Request.Context(), userID, req.XP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserProgress(progress))
}

// ListVocabulary handles GET /users/:userID/vocabulary.
func (h *ProgressHandler) ListVocabulary(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		respondError(c, err)
		return
	}
	query := &repository.ListVocabularyQuery{
		Pagination: pagination(c),
		FilterOrder: repository.FilterOrder{
			Filter:  c.Query("filter"),
			OrderBy: c.Query("order_by"),
		},
		UserID: userID,
	}
	items, total, err := h.engine.ListVocabulary(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVocabularyList(items, total))
}

// RecordMastery handles POST /users/:userID/vocabulary.
func (h *ProgressHandler) RecordMastery(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		respondError(c, err)
		return
	}
	var req recordMasteryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errBadRequestBody)
		return
	}
	voc, err := h.engine.RecordVocabularyMastery(
		c.Request.Context(), userID, req.WordID, req.VideoID, entity.MasteryLevel(req.MasteryLevel))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVocabulary(voc))
}

// ListDueVocabulary handles GET /users/:userID/vocabulary/due.
func (h *ProgressHandler) ListDueVocabulary(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.engine.GetDueVocabulary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVocabularyList(items, int64(len(items))))
}

// RecordExercise handles POST /users/:userID/exercises.
func (h *ProgressHandler) RecordExercise(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		respondError(c, err)
		return
	}
	var req recordExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errBadRequestBody)
		return
	}
	result, err := h.engine.RecordExerciseCompletion(
		c.Request.Context(), userID, req.ExerciseID, req.Score, req.IsCorrect, req.TimeTaken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExerciseResult(result))
}

// UpdateWatchProgress handles PUT /users/:userID/videos/:videoID/watch.
func (h *ProgressHandler) UpdateWatchProgress(c *gin.Context) {
	userID, videoID, err := userVideoIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req watchProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errBadRequestBody)
		return
	}
	progress, err := h.engine.UpdateVideoWatchProgress(
		c.Request.Context(), userID, videoID, req.WatchedSeconds, req.LastSegmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVideoProgress(progress))
}

// MarkVideoCompleted handles POST /users/:userID/videos/:videoID/complete.
func (h *ProgressHandler) MarkVideoCompleted(c *gin.Context) {
	userID, videoID, err := userVideoIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}
	progress, err := h.engine.MarkVideoCompleted(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVideoProgress(progress))
}

// CompleteSegment handles POST /users/:userID/videos/:videoID/segments/:segmentID/complete.
func (h *ProgressHandler) CompleteSegment(c *gin.Context) {
	userID, videoID, err := userVideoIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}
	segmentID, err := pathID(c, "segmentID")
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.engine.CompleteSegment(c.Request.Context(), userID, videoID, segmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSegmentResult(result))
}

// GetLearningStatus handles GET /users/:userID/videos/:videoID/status.
func (h *ProgressHandler) GetLearningStatus(c *gin.Context) {
	userID, videoID, err := userVideoIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}
	status, err := h.engine.GetVideoLearningStatus(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLearningStatus(status))
}

// GetStatsSummary handles GET /users/:userID/videos/:videoID/stats.
func (h *ProgressHandler) GetStatsSummary(c *gin.Context) {
	userID, videoID, err := userVideoIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.engine.GetVideoStatsSummary(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatsSummary(summary))
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", errBadPathParam, name)
	}
	return id, nil
}

func userVideoIDs(c *gin.Context) (int64, int64, error) {
	userID, err := pathID(c, "userID")
	if err != nil {
		return 0, 0, err
	}
	videoID, err := pathID(c, "videoID")
	if err != nil {
		return 0, 0, err
	}
	return userID, videoID, nil
}

func pagination(c *gin.Context) repository.Pagination {
	pageNo, _ := strconv.ParseInt(c.DefaultQuery("page_no", "1"), 10, 32)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 32)
	if pageNo <= 0 {
		pageNo = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > _maxPageSize {
		pageSize = _maxPageSize
	}
	return repository.Pagination{PageNo: int32(pageNo), PageSize: int32(pageSize)}
}

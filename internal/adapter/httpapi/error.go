package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/pkg/filterquery"
)

// errBadPathParam flags unparseable or non-positive path identifiers.
var errBadPathParam = errors.New("invalid path parameter")

// errBadRequestBody flags JSON bodies that fail binding.
var errBadRequestBody = errors.New("invalid request body")

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// respondError translates a domain error into an HTTP status plus a JSON
// error envelope.
func respondError(c *gin.Context, err error) {
	status, code := statusOf(err)
	c.JSON(status, errorEnvelope{Error: apiError{Message: err.Error(), Code: code}})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errBadPathParam),
		errors.Is(err, errBadRequestBody),
		errors.Is(err, filterquery.ErrInvalidQuery),
		errors.Is(err, entity.ErrInvalidUserID),
		errors.Is(err, entity.ErrInvalidMasteryLevel),
		errors.Is(err, entity.ErrInvalidScore),
		errors.Is(err, entity.ErrInvalidWatchedSeconds):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, entity.ErrUserProgressNotFound),
		errors.Is(err, entity.ErrVideoNotFound),
		errors.Is(err, entity.ErrSegmentNotFound),
		errors.Is(err, entity.ErrExerciseNotFound),
		errors.Is(err, entity.ErrVideoProgressNotFound),
		errors.Is(err, entity.ErrVocabularyNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

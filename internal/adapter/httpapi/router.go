package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter assembles the gin engine with middleware and all progress routes.
func NewRouter(handler *ProgressHandler, logger *logrus.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	users := api.Group("/users/:userID")
	{
		users.GET("/progress", handler.GetUserProgress)
		users.POST("/xp", handler.AddXP)

		users.GET("/vocabulary", handler.ListVocabulary)
		users.POST("/vocabulary", handler.RecordMastery)
		users.GET("/vocabulary/due", handler.ListDueVocabulary)

		users.POST("/exercises", handler.RecordExercise)

		videos := users.Group("/videos/:videoID")
		{
			videos.PUT("/watch", handler.UpdateWatchProgress)
			videos.POST("/complete", handler.MarkVideoCompleted)
			videos.POST("/segments/:segmentID/complete", handler.CompleteSegment)
			videos.GET("/status", handler.GetLearningStatus)
			videos.GET("/stats", handler.GetStatsSummary)
		}
	}

	return router
}

// requestLogger emits one structured line per request once the handler chain
// has finished.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"client":   c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request completed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

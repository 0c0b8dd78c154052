// Package api exposes the engine over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/studyquest/internal/attention"
	"github.com/abhisek/studyquest/internal/economy"
	"github.com/abhisek/studyquest/internal/engine"
	"github.com/abhisek/studyquest/internal/parental"
	"github.com/abhisek/studyquest/internal/quiz"
	"github.com/abhisek/studyquest/internal/store"
)

// Server carries the handler dependencies.
type Server struct {
	engine *engine.Engine
	log    *zap.Logger
}

// NewRouter builds the HTTP router. env selects gin's mode.
func NewRouter(eng *engine.Engine, log *zap.Logger, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{engine: eng, log: log}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/sessions", s.setupSession)
		v1.POST("/quizzes", s.createQuiz)
		v1.POST("/quizzes/:id/submit", s.submitQuiz)
		v1.POST("/quizzes/:id/hint", s.useHint)
		v1.GET("/perks", s.listPerks)
		v1.GET("/leaderboard", s.leaderboard)

		students := v1.Group("/students/:id")
		{
			students.GET("/dashboard", s.dashboard)
			students.POST("/perks", s.purchasePerk)
			students.POST("/attention", s.ingestAttention)
			students.POST("/video", s.startVideoSession)
			students.POST("/video/complete", s.completeVideoSession)
			students.PUT("/policy", s.updatePolicy)
			students.GET("/revision/:subject", s.revisionSummary)
			students.DELETE("", s.resetStudent)
		}
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps domain errors to HTTP statuses and writes the error body.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var limit *parental.DailyLimitError
	switch {
	case errors.As(err, &limit):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, quiz.ErrUnknownQuiz),
		errors.Is(err, economy.ErrUnknownPerk),
		errors.Is(err, attention.ErrNoActiveSession):
		status = http.StatusNotFound
	case errors.Is(err, quiz.ErrAlreadySubmitted):
		status = http.StatusConflict
	case errors.Is(err, economy.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, quiz.ErrInsufficientQuestions),
		errors.Is(err, quiz.ErrNoHintsAvailable),
		errors.Is(err, economy.ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// badRequest writes a 400 for malformed input.
func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyquest/internal/attention"
	"github.com/abhisek/studyquest/internal/economy"
	"github.com/abhisek/studyquest/internal/store"
)

type sessionRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

func (s *Server) setupSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	session, err := s.engine.SetupSession(c.Request.Context(), req.StudentID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type createQuizRequest struct {
	StudentID  string `json:"student_id" binding:"required"`
	Subject    string `json:"subject" binding:"required"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

func (s *Server) createQuiz(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "auto"
	}
	q, err := s.engine.CreateQuiz(c.Request.Context(), req.StudentID, req.Subject, req.Difficulty, req.Count)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

type submitQuizRequest struct {
	Answers   []int   `json:"answers"`
	TimeTaken float64 `json:"time_taken"`
}

func (s *Server) submitQuiz(c *gin.Context) {
	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	result, err := s.engine.SubmitQuiz(c.Request.Context(), c.Param("id"), req.Answers, req.TimeTaken)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type hintRequest struct {
	QuestionIndex int `json:"question_index"`
}

func (s *Server) useHint(c *gin.Context) {
	var req hintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	hint, err := s.engine.UseHint(c.Request.Context(), c.Param("id"), req.QuestionIndex)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hint": hint})
}

func (s *Server) listPerks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"perks": s.engine.PerkCatalog()})
}

type purchaseRequest struct {
	PerkID string `json:"perk_id" binding:"required"`
}

func (s *Server) purchasePerk(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	receipt, err := s.engine.PurchasePerk(c.Request.Context(), c.Param("id"), req.PerkID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

type attentionRequest struct {
	Score *float64 `json:"score" binding:"required"`
	// Timestamp is the sensor's clock; omitted samples are stamped on
	// receipt.
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) ingestAttention(c *gin.Context) {
	var req attentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	sample := attention.Sample{Score: *req.Score, At: req.Timestamp}
	result, err := s.engine.IngestAttention(c.Request.Context(), c.Param("id"), sample)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type videoRequest struct {
	Title string `json:"title" binding:"required"`
}

func (s *Server) startVideoSession(c *gin.Context) {
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	info, err := s.engine.StartVideoSession(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (s *Server) completeVideoSession(c *gin.Context) {
	reward, err := s.engine.CompleteVideoSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

type policyRequest struct {
	WebcamEnabled        *bool `json:"webcam_enabled" binding:"required"`
	DailyStudyMinutes    int   `json:"daily_study_minutes"`
	DailyQuizLimit       int   `json:"daily_quiz_limit"`
	AutoAdjustDifficulty *bool `json:"auto_adjust_difficulty" binding:"required"`
}

func (s *Server) updatePolicy(c *gin.Context) {
	var req policyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	profile, err := s.engine.UpdateParentalPolicy(c.Request.Context(), c.Param("id"), store.ParentalPolicy{
		WebcamEnabled:        *req.WebcamEnabled,
		DailyStudyMinutes:    req.DailyStudyMinutes,
		DailyQuizLimit:       req.DailyQuizLimit,
		AutoAdjustDifficulty: *req.AutoAdjustDifficulty,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"policy": profile.Policy})
}

func (s *Server) dashboard(c *gin.Context) {
	dash, err := s.engine.GetDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (s *Server) leaderboard(c *gin.Context) {
	metric, ok := economy.ParseMetric(c.Query("metric"))
	if !ok {
		s.badRequest(c, errors.New("unknown metric"))
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.badRequest(c, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	entries, err := s.engine.Leaderboard(c.Request.Context(), metric, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "entries": entries})
}

func (s *Server) revisionSummary(c *gin.Context) {
	summary, err := s.engine.RevisionSummary(c.Request.Context(), c.Param("id"), c.Param("subject"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) resetStudent(c *gin.Context) {
	if err := s.engine.ResetStudent(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

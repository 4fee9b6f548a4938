package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"radruga/pkg/models"
)

func (s *Server) getPersonQualities(c *gin.Context) {
	qualities, err := s.svc.Quiz.GetPersonQualities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", qualities)
}

// answerQuestion applies a single quiz answer to the caller's qualities
func (s *Server) answerQuestion(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.QuizAnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.svc.Quiz.AnswerQuestion(c.Request.Context(), userID, req.Qualities)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

// completeQuiz finishes the quiz and assigns the caller's color
func (s *Server) completeQuiz(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.QuizCompleteRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.svc.Quiz.CompleteQuiz(c.Request.Context(), userID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res.OperationResult, res)
}

func (s *Server) addPersonQuality(c *gin.Context) {
	var q models.PersonQuality
	if !bindJSON(c, &q) {
		return
	}
	if err := s.svc.Quiz.AddPersonQuality(c.Request.Context(), &q); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Person quality added", q)
}

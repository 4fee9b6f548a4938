package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"radruga/pkg/models"
)

// getMissionsForUser lists the caller's missions with their display status
func (s *Server) getMissionsForUser(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	missions, err := s.svc.Missions.GetMissionsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", missions)
}

// searchMissions runs a fuzzy search over mission names
func (s *Server) searchMissions(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}
	missions, err := s.svc.Missions.SearchMissions(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", missions)
}

func (s *Server) getMission(c *gin.Context) {
	mission, err := s.svc.Missions.GetMission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", mission)
}

// completeMission submits a proof for one of the caller's active missions
func (s *Server) completeMission(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var proof models.Proof
	if !bindJSON(c, &proof) {
		return
	}

	result, err := s.svc.Requests.CompleteMission(c.Request.Context(), userID, c.Param("id"), proof)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, result.OperationResult, result)
}

// requestHint buys (or re-reads) a hint of an active mission
func (s *Server) requestHint(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	result, err := s.svc.Hints.RequestHint(c.Request.Context(), userID, c.Param("id"), c.Param("hint_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, result.OperationResult, result)
}

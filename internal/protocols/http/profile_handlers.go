package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"radruga/internal/core"
	"radruga/pkg/models"
)

// register creates the game profile for the token's user
func (s *Server) register(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	// The profile id is always the authenticated account
	req.ID = userID
	if !validated(c, &req) {
		return
	}

	res, err := s.svc.Users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.IsSuccess() {
		respondOK(c, http.StatusCreated, "Profile created successfully", res)
		return
	}
	if res.Description == core.MsgUserExists {
		c.JSON(http.StatusConflict, models.APIResponse{
			Success:   false,
			Error:     res.Description,
			Data:      res,
			Timestamp: time.Now(),
		})
		return
	}
	respondResult(c, res.OperationResult, res)
}

func (s *Server) getProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	user, err := s.svc.Users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", user)
}

func (s *Server) updateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.svc.Users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

// getMissionSetsForUser lists the sets attached to the caller
func (s *Server) getMissionSetsForUser(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sets, err := s.svc.Users.GetMissionSetsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", sets)
}

func (s *Server) addKindAction(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.KindActionRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.svc.Users.AddKindAction(c.Request.Context(), userID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

func (s *Server) getKindActions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}
	actions, err := s.svc.Users.GetKindActions(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", actions)
}

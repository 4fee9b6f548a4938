package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"radruga/pkg/models"
)

// listRequests lists mission requests, newest first. The default filter is
// the review queue.
func (s *Server) listRequests(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	filter := models.MissionRequestFilter{
		UserID:    c.Query("user_id"),
		MissionID: c.Query("mission_id"),
		Status:    models.RequestStatus(c.DefaultQuery("status", string(models.RequestNotChecked))),
		Limit:     limit,
		Offset:    offset,
	}
	requests, err := s.svc.Requests.GetRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", requests)
}

func (s *Server) approveRequest(c *gin.Context) {
	var req models.ApproveRequestBody
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.svc.Requests.ApproveRequest(c.Request.Context(), c.Param("id"), req.Stars)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

func (s *Server) declineRequest(c *gin.Context) {
	var req models.DeclineRequestBody
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.svc.Requests.DeclineRequest(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

func (s *Server) listMissions(c *gin.Context) {
	missions, err := s.svc.Missions.GetMissions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", missions)
}

func (s *Server) addMission(c *gin.Context) {
	var mission models.Mission
	if err := c.ShouldBindJSON(&mission); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	res, err := s.svc.Missions.AddMission(c.Request.Context(), &mission)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.IsSuccess() {
		respondOK(c, http.StatusCreated, "Mission created successfully", res)
		return
	}
	respondResult(c, res.OperationResult, res)
}

func (s *Server) updateMission(c *gin.Context) {
	var mission models.Mission
	if err := c.ShouldBindJSON(&mission); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	mission.ID = c.Param("id")
	res, err := s.svc.Missions.UpdateMission(c.Request.Context(), &mission)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

func (s *Server) deleteMission(c *gin.Context) {
	res, err := s.svc.Missions.DeleteMission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

func (s *Server) listMissionSets(c *gin.Context) {
	sets, err := s.svc.Missions.GetMissionSets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", sets)
}

func (s *Server) addMissionSet(c *gin.Context) {
	var set models.MissionSet
	if err := c.ShouldBindJSON(&set); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	res, err := s.svc.Missions.AddMissionSet(c.Request.Context(), &set)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.IsSuccess() {
		respondOK(c, http.StatusCreated, "Mission set created successfully", res)
		return
	}
	respondResult(c, res.OperationResult, res)
}

func (s *Server) updateMissionSet(c *gin.Context) {
	var set models.MissionSet
	if err := c.ShouldBindJSON(&set); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	set.ID = c.Param("id")
	res, err := s.svc.Missions.UpdateMissionSet(c.Request.Context(), &set)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

func (s *Server) deleteMissionSet(c *gin.Context) {
	res, err := s.svc.Missions.DeleteMissionSet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, res, res)
}

func (s *Server) listAliases(c *gin.Context) {
	aliases, err := s.svc.Places.GetAliases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", aliases)
}

func (s *Server) addAlias(c *gin.Context) {
	var alias models.CommonPlaceAlias
	if err := c.ShouldBindJSON(&alias); err != nil || alias.ID == "" {
		badRequest(c, "invalid request body")
		return
	}
	if err := s.svc.Places.AddAlias(c.Request.Context(), &alias); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Alias added", alias)
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"radruga/pkg/models"
	"radruga/pkg/utils"
)

// getRatings returns a leaderboard. Authenticated callers outside the
// leaders also get their neighbors in the common rating.
func (s *Server) getRatings(c *gin.Context) {
	ratingType := models.RatingType(c.DefaultQuery("type", string(models.RatingCommon)))
	userID, _ := GetUserID(c)

	ratings, err := s.svc.Ratings.GetRatings(c.Request.Context(), ratingType, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", ratings)
}

// rebuildRatings reloads the rating cache from storage
func (s *Server) rebuildRatings(c *gin.Context) {
	ctx, cancel := utils.WithLongTimeout(c.Request.Context())
	defer cancel()

	if err := s.svc.Ratings.BuildRatings(ctx); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Ratings rebuilt", nil)
}

// runDailyJob runs the daily maintenance on demand
func (s *Server) runDailyJob(c *gin.Context) {
	ctx, cancel := utils.WithLongTimeout(c.Request.Context())
	defer cancel()

	if err := s.svc.Maintenance.RunDaily(ctx); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Daily job finished", nil)
}

func (s *Server) getCounters(c *gin.Context) {
	counters, err := s.svc.Users.GetCounters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", counters)
}

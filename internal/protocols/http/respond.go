package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"radruga/pkg/logger"
	"radruga/pkg/models"
	"radruga/pkg/utils"
)

// respondOK wraps data in a successful APIResponse
func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// respondError answers with the status the error maps to. Internal failures
// are logged and hidden from the caller.
func respondError(c *gin.Context, err error) {
	status := models.HTTPStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.WithRequestID(c.Request.Context()).WithError(err).WithFields(map[string]interface{}{
			"path": c.Request.URL.Path,
		}).Error("request failed")
		msg = "internal server error"
	}
	c.JSON(status, models.APIResponse{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now(),
	})
}

// respondResult answers with an operation outcome. The full result is always
// returned as data so clients can read the status and description.
func respondResult(c *gin.Context, res models.OperationResult, data interface{}) {
	status := http.StatusOK
	switch res.Status {
	case models.StatusNotFound:
		status = http.StatusNotFound
	case models.StatusError:
		status = http.StatusBadRequest
	}
	resp := models.APIResponse{
		Success:   res.Status == models.StatusSuccess || res.Status == models.StatusWarning,
		Message:   res.Description,
		Data:      data,
		Timestamp: time.Now(),
	}
	if !resp.Success {
		resp.Error = res.Description
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.APIResponse{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now(),
	})
}

// bindJSON decodes and validates the body, answering 400 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	return validated(c, dst)
}

func validated(c *gin.Context, v interface{}) bool {
	if err := utils.ValidateStruct(v); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

// requireUserID returns the caller or answers 401
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := GetUserID(c)
	if !ok || userID == "" {
		abortWith(c, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// queryInt reads a non-negative integer query parameter
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, "invalid "+key)
		return 0, false
	}
	return v, true
}

package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"radruga/internal/core"
	"radruga/internal/metrics"
	"radruga/pkg/logger"
	"radruga/pkg/models"
)

const (
	ctxUserID   = "user_id"
	ctxIdentity = "identity"

	headerRequestID = "X-Request-ID"
)

// AuthMiddleware validates JWT token and sets user context
func AuthMiddleware(authSvc core.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		identity, err := authSvc.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		c.Set(ctxUserID, identity.UserID)
		c.Set(ctxIdentity, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the user context when a valid token is sent and
// lets anonymous requests through otherwise
func OptionalAuthMiddleware(authSvc core.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if identity, err := authSvc.ValidateToken(c.Request.Context(), parts[1]); err == nil {
				c.Set(ctxUserID, identity.UserID)
				c.Set(ctxIdentity, identity)
			}
		}
		c.Next()
	}
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetIdentity retrieves the authenticated caller from the context
func GetIdentity(c *gin.Context) (core.Identity, bool) {
	v, exists := c.Get(ctxIdentity)
	if !exists {
		return core.Identity{}, false
	}
	identity, ok := v.(core.Identity)
	return identity, ok
}

// AdminMiddleware ensures the user has admin role
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := GetIdentity(c)
		if !exists {
			abortWith(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !identity.IsAdmin() {
			abortWith(c, http.StatusForbidden, "forbidden: admin access required")
			return
		}
		c.Next()
	}
}

// requestIDMiddleware propagates X-Request-ID into the request context so
// service logs can be correlated
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// accessLogMiddleware logs every request and feeds the HTTP histogram
func accessLogMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		took := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.HTTPRequest(c.Request.Method, route, strconv.Itoa(status), took)
		logger.HTTP(c.Request.Method, c.Request.URL.Path, status, int(took.Milliseconds()))
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// recoverCatalogDefect turns a panic into a 500. Catalog defects are logged
// with the offending entity so the data can be fixed.
func recoverCatalogDefect(c *gin.Context, recovered any) {
	log := logger.WithRequestID(c.Request.Context()).WithFields(map[string]interface{}{
		"path": c.Request.URL.Path,
	})

	var defect *models.CatalogDefect
	if err, ok := recovered.(error); ok && errors.As(err, &defect) {
		log.WithFields(map[string]interface{}{
			"entity": defect.Entity,
			"id":     defect.ID,
			"field":  defect.Field,
			"value":  defect.Value,
		}).Error("catalog defect")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.APIResponse{
			Success:   false,
			Error:     models.ErrCodeCatalogDefect,
			Data:      models.ErrorResult(core.MsgCatalogDefect),
			Timestamp: time.Now(),
		})
		return
	}

	log.WithFields(map[string]interface{}{"panic": recovered}).Error("panic recovered")
	abortWith(c, http.StatusInternalServerError, "internal server error")
}

func abortWith(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.APIResponse{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now(),
	})
}

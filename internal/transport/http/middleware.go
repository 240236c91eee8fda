package httpt

import (
	"net/http"
	"time"

	"umkmorder/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	_requestIDHeader = "X-Request-ID"
	_adminUserKey    = "admin_user"

	_slowRequest = 200 * time.Millisecond
)

// dummyHash keeps the response time of unknown logins close to that of a
// wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("umkm-dummy-password"), bcrypt.MinCost)

func (h *OrderHandler) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(_requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = h.log.GenerateRequestID()
		}
		ctx := h.log.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(_requestIDHeader, requestID)

		c.Next()
	}
}

func (h *OrderHandler) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		h.log.LogRequest(c.Request.Context(), method, path, statusCode, latency)
		h.log.LogAttrs(c.Request.Context(), logger.DebugLevel, "request client",
			logger.String("url_path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
			logger.String("user_agent", c.Request.UserAgent()),
		)

		h.metrics.Request(method, path, statusCode, latency)

		if latency > _slowRequest {
			h.metrics.SlowRequest(method, path, statusCode, latency)
		}
	}
}

// adminAuthMiddleware checks HTTP Basic credentials against the configured
// bcrypt hashes.
func (h *OrderHandler) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		login, password, ok := c.Request.BasicAuth()
		if ok && h.checkCredentials(login, password) {
			c.Set(_adminUserKey, login)
			c.Next()
			return
		}

		h.log.LogAttrs(c.Request.Context(), logger.WarnLevel, "admin authentication failed",
			logger.String("login", login),
			logger.Bool("credentials_sent", ok),
			logger.String("client_ip", c.ClientIP()),
		)

		c.Header("WWW-Authenticate", `Basic realm="`+h.realm+`", charset="UTF-8"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
	}
}

func (h *OrderHandler) checkCredentials(login, password string) bool {
	hash, known := h.adminUsers[login]
	if !known {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

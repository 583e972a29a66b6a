package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Health probes are noisy, keep them at debug.
var loggerSkipPathsPrefix = []string{
	"GET /api/health",
	"HEAD /api/health",
}

type ZerologMiddleware struct{}

func NewZerologMiddleware() *ZerologMiddleware {
	return &ZerologMiddleware{}
}

func (m *ZerologMiddleware) Init() error {
	return nil
}

func (m *ZerologMiddleware) quietPath(path string) bool {
	for _, prefix := range loggerSkipPathsPrefix {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *ZerologMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tStart := time.Now()

		c.Next()

		code := c.Writer.Status()
		method := c.Request.Method
		path := c.Request.URL.Path
		latency := time.Since(tStart).String()

		event := log.Info()

		switch {
		case m.quietPath(method + " " + path):
			event = log.Debug()
		case code >= 400:
			event = log.Error()
		case code >= 300:
			event = log.Warn()
		}

		event.Str("method", method).Str("path", path).Str("clientIp", c.ClientIP()).Int("status", code).Str("latency", latency).Msg("Request")
	}
}

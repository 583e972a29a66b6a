package middleware

import (
	"github.com/doskvol-ltd/doskvol/internal/config"
	"github.com/doskvol-ltd/doskvol/internal/service"

	"github.com/gin-gonic/gin"
)

// ContextMiddleware resolves the session cookie into a typed identity once
// per request and stores it on the gin context for handlers to consume.
type ContextMiddleware struct {
	auth *service.AuthService
}

func NewContextMiddleware(auth *service.AuthService) *ContextMiddleware {
	return &ContextMiddleware{
		auth: auth,
	}
}

func (m *ContextMiddleware) Init() error {
	return nil
}

func (m *ContextMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.auth.ResolveSession(c)

		if err != nil {
			// Corrupt linked data, e.g. a session pointing at a deleted
			// user. Fail the request instead of guessing an identity.
			c.AbortWithStatusJSON(500, gin.H{
				"status":  500,
				"message": "Internal Server Error",
			})
			return
		}

		if user == nil {
			c.Set("context", &config.UserContext{})
			c.Next()
			return
		}

		c.Set("context", &config.UserContext{
			Username:   user.Username,
			IsLoggedIn: true,
		})
		c.Next()
	}
}

package controller

import (
	"errors"

	"github.com/doskvol-ltd/doskvol/internal/config"
	"github.com/doskvol-ltd/doskvol/internal/service"
	"github.com/doskvol-ltd/doskvol/internal/utils"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the resolved identity from the request context and
// rejects anonymous callers.
func currentUser(c *gin.Context) (config.UserContext, bool) {
	context, err := utils.GetContext(c)

	if err != nil || !context.IsLoggedIn {
		c.JSON(401, gin.H{
			"status":  401,
			"message": "Unauthorized",
		})
		return config.UserContext{}, false
	}

	return context, true
}

// serviceError maps a service failure onto the response envelope. Messages
// stay generic, guards never explain why access was denied.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(404, gin.H{
			"status":  404,
			"message": "Not Found",
		})
	case errors.Is(err, service.ErrNotAuthenticated):
		c.JSON(401, gin.H{
			"status":  401,
			"message": "Unauthorized",
		})
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(401, gin.H{
			"status":  401,
			"message": "Unauthorized",
		})
	case errors.Is(err, service.ErrInvalidUsername):
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Invalid username",
		})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(409, gin.H{
			"status":  409,
			"message": "Username already in use",
		})
	case errors.Is(err, service.ErrAlreadyMember):
		c.JSON(409, gin.H{
			"status":  409,
			"message": "Already a member of this crew",
		})
	case errors.Is(err, service.ErrInviteExhausted):
		c.JSON(410, gin.H{
			"status":  410,
			"message": "Invite code has reached its maximum uses",
		})
	default:
		c.JSON(500, gin.H{
			"status":  500,
			"message": "Internal Server Error",
		})
	}
}

package controller

import (
	"errors"

	"github.com/doskvol-ltd/doskvol/internal/service"
	"github.com/doskvol-ltd/doskvol/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type BeginEnrollmentRequest struct {
	Username string `json:"username"`
}

type CompleteEnrollmentRequest struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
	Code     string `json:"code"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type AuthController struct {
	router *gin.RouterGroup
	auth   *service.AuthService
}

func NewAuthController(router *gin.RouterGroup, auth *service.AuthService) *AuthController {
	return &AuthController{
		router: router,
		auth:   auth,
	}
}

func (controller *AuthController) SetupRoutes() {
	authGroup := controller.router.Group("/auth")
	authGroup.POST("/register/begin", controller.beginEnrollmentHandler)
	authGroup.POST("/register", controller.completeEnrollmentHandler)
	authGroup.POST("/login", controller.loginHandler)
	authGroup.POST("/logout", controller.logoutHandler)
	authGroup.GET("/me", controller.meHandler)
}

func (controller *AuthController) beginEnrollmentHandler(c *gin.Context) {
	var req BeginEnrollmentRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	log.Debug().Str("username", req.Username).Msg("Enrollment started")

	descriptor, err := controller.auth.BeginEnrollment(req.Username)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status":  200,
		"message": "Enrollment started",
		"totp":    descriptor,
	})
}

func (controller *AuthController) completeEnrollmentHandler(c *gin.Context) {
	var req CompleteEnrollmentRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	log.Debug().Str("username", req.Username).Msg("Enrollment attempt")

	user, err := controller.auth.CompleteEnrollment(c, req.Username, req.Secret, req.Code)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status":   200,
		"message":  "Enrollment successful",
		"username": user.Username,
	})
}

func (controller *AuthController) loginHandler(c *gin.Context) {
	var req LoginRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	log.Debug().Str("username", req.Username).Msg("Login attempt")

	user, err := controller.auth.Login(c, req.Username, req.Code)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status":   200,
		"message":  "Login successful",
		"username": user.Username,
	})
}

func (controller *AuthController) logoutHandler(c *gin.Context) {
	log.Debug().Msg("Logout request received")

	err := controller.auth.RevokeSession(c)

	if errors.Is(err, service.ErrNoActiveSession) {
		// A logout with no session is harmless, tell the caller nothing
		// happened rather than failing.
		c.JSON(200, gin.H{
			"status":  200,
			"message": "No active session",
		})
		return
	}

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status":  200,
		"message": "Logout successful",
	})
}

func (controller *AuthController) meHandler(c *gin.Context) {
	context, err := utils.GetContext(c)

	if err != nil {
		log.Error().Err(err).Msg("Failed to get user context")
		c.JSON(500, gin.H{
			"status":  500,
			"message": "Internal Server Error",
		})
		return
	}

	if !context.IsLoggedIn {
		c.JSON(200, gin.H{
			"status":     200,
			"message":    "Anonymous",
			"isLoggedIn": false,
		})
		return
	}

	c.JSON(200, gin.H{
		"status":     200,
		"message":    "Authenticated",
		"isLoggedIn": true,
		"username":   context.Username,
	})
}

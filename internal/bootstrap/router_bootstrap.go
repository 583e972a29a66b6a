package bootstrap

import (
	"fmt"
	"strings"

	"github.com/doskvol-ltd/doskvol/internal/controller"
	"github.com/doskvol-ltd/doskvol/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (app *BootstrapApp) setupRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	if len(app.config.TrustedProxies) > 0 {
		err := engine.SetTrustedProxies(strings.Split(app.config.TrustedProxies, ","))

		if err != nil {
			return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	contextMiddleware := middleware.NewContextMiddleware(app.services.authService)

	if err := contextMiddleware.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize context middleware: %w", err)
	}

	engine.Use(contextMiddleware.Middleware())

	zerologMiddleware := middleware.NewZerologMiddleware()

	if err := zerologMiddleware.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize zerolog middleware: %w", err)
	}

	engine.Use(zerologMiddleware.Middleware())

	apiRouter := engine.Group("/api")

	authController := controller.NewAuthController(apiRouter, app.services.authService)
	authController.SetupRoutes()

	crewController := controller.NewCrewController(apiRouter, app.services.crewService, app.services.characterService)
	crewController.SetupRoutes()

	characterController := controller.NewCharacterController(apiRouter, app.services.characterService)
	characterController.SetupRoutes()

	healthController := controller.NewHealthController(apiRouter)
	healthController.SetupRoutes()

	return engine, nil
}

package bootstrap

import (
	"fmt"

	"github.com/doskvol-ltd/doskvol/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type BootstrapApp struct {
	config     config.Config
	instanceID string
	services   Services
}

func NewBootstrapApp(config config.Config) *BootstrapApp {
	return &BootstrapApp{
		config: config,
	}
}

func (app *BootstrapApp) Setup() error {
	app.instanceID = uuid.NewString()
	log.Debug().Str("instanceId", app.instanceID).Msg("Starting instance")

	services, err := app.initServices()

	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	app.services = services

	router, err := app.setupRouter()

	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	address := fmt.Sprintf("%s:%d", app.config.Address, app.config.Port)
	log.Info().Msgf("Starting server on %s", address)
	if err := router.Run(address); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	return nil
}

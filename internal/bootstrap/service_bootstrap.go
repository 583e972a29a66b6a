package bootstrap

import (
	"github.com/doskvol-ltd/doskvol/internal/service"
)

type Services struct {
	databaseService  *service.DatabaseService
	authService      *service.AuthService
	crewService      *service.CrewService
	characterService *service.CharacterService
}

func (app *BootstrapApp) initServices() (Services, error) {
	databaseService := service.NewDatabaseService(service.DatabaseServiceConfig{
		DatabasePath: app.config.DatabasePath,
	})

	if err := databaseService.Init(); err != nil {
		return Services{}, err
	}

	db := databaseService.GetDatabase()

	crewService := service.NewCrewService(db)

	return Services{
		databaseService:  databaseService,
		authService:      service.NewAuthService(db),
		crewService:      crewService,
		characterService: service.NewCharacterService(db, crewService),
	}, nil
}

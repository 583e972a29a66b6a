package controller

import (
	"strconv"

	"github.com/doskvol-ltd/doskvol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type CreateCrewRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	DMName    string `json:"dmName"`
}

type CreateInviteRequest struct {
	MaxUses int `json:"maxUses"`
}

type JoinCrewRequest struct {
	DisplayName string `json:"displayName"`
}

type CrewController struct {
	router *gin.RouterGroup
	crews  *service.CrewService
	chars  *service.CharacterService
}

func NewCrewController(router *gin.RouterGroup, crews *service.CrewService, chars *service.CharacterService) *CrewController {
	return &CrewController{
		router: router,
		crews:  crews,
		chars:  chars,
	}
}

func (controller *CrewController) SetupRoutes() {
	crewGroup := controller.router.Group("/crews")
	crewGroup.POST("", controller.createCrewHandler)
	crewGroup.GET("", controller.listCrewsHandler)
	crewGroup.GET("/:id", controller.getCrewHandler)
	crewGroup.GET("/:id/characters", controller.crewCharactersHandler)
	crewGroup.POST("/:id/invites", controller.createInviteHandler)
	crewGroup.GET("/:id/invites", controller.listInvitesHandler)

	inviteGroup := controller.router.Group("/invites")
	inviteGroup.DELETE("/:code", controller.deleteInviteHandler)
	inviteGroup.POST("/:code/join", controller.joinCrewHandler)
}

func crewID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)

	if err != nil {
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return 0, false
	}

	return uint(id), true
}

func (controller *CrewController) createCrewHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateCrewRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	crew, err := controller.crews.CreateCrew(context.Username, req.Name, req.Specialty, req.DMName)

	if err != nil {
		serviceError(c, err)
		return
	}

	log.Info().Str("username", context.Username).Uint("crewId", crew.ID).Msg("Created crew")

	c.JSON(200, gin.H{
		"status":  200,
		"message": "Crew created",
		"crew":    crew,
	})
}

func (controller *CrewController) listCrewsHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	crews, err := controller.crews.ListCrews(context.Username)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status": 200,
		"crews":  crews,
	})
}

func (controller *CrewController) getCrewHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := crewID(c)
	if !ok {
		return
	}

	crew, err := controller.crews.GetCrew(id, context.Username)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status": 200,
		"crew":   crew,
	})
}

func (controller *CrewController) crewCharactersHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := crewID(c)
	if !ok {
		return
	}

	characters, err := controller.chars.CrewCharacters(id, context.Username)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status":     200,
		"characters": characters,
	})
}

func (controller *CrewController) createInviteHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := crewID(c)
	if !ok {
		return
	}

	var req CreateInviteRequest

	err := c.ShouldBindJSON(&req)
	if err != nil || req.MaxUses < 1 {
		log.Error().Err(err).Msg("Invalid invite request")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	invite, err := controller.crews.CreateInvite(id, context.Username, req.MaxUses)

	if err != nil {
		serviceError(c, err)
		return
	}

	log.Info().Str("username", context.Username).Uint("crewId", id).Msg("Created crew invite")

	c.JSON(200, gin.H{
		"status":  200,
		"message": "Invite created",
		"invite":  invite,
	})
}

func (controller *CrewController) listInvitesHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := crewID(c)
	if !ok {
		return
	}

	invites, err := controller.crews.ListInvites(id, context.Username)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status":  200,
		"invites": invites,
	})
}

func (controller *CrewController) deleteInviteHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	code := c.Param("code")

	err := controller.crews.DeleteInvite(code, context.Username)

	if err != nil {
		serviceError(c, err)
		return
	}

	log.Info().Str("username", context.Username).Msg("Deleted crew invite")

	c.JSON(200, gin.H{
		"status":  200,
		"message": "Invite deleted",
	})
}

func (controller *CrewController) joinCrewHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	code := c.Param("code")

	var req JoinCrewRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	crew, err := controller.crews.RedeemInvite(code, context.Username, req.DisplayName)

	if err != nil {
		serviceError(c, err)
		return
	}

	log.Info().Str("username", context.Username).Uint("crewId", crew.ID).Msg("Joined crew")

	c.JSON(200, gin.H{
		"status":  200,
		"message": "Joined crew",
		"crew":    crew,
	})
}

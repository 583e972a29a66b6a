package controller

import (
	"strconv"

	"github.com/doskvol-ltd/doskvol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type CharacterController struct {
	router *gin.RouterGroup
	chars  *service.CharacterService
}

func NewCharacterController(router *gin.RouterGroup, chars *service.CharacterService) *CharacterController {
	return &CharacterController{
		router: router,
		chars:  chars,
	}
}

func (controller *CharacterController) SetupRoutes() {
	characterGroup := controller.router.Group("/characters")
	characterGroup.POST("", controller.createCharacterHandler)
	characterGroup.GET("/:id", controller.getCharacterHandler)
	characterGroup.PATCH("/:id", controller.updateCharacterHandler)
}

func characterID(c *gin.Context) (uint, bool) {
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

func (controller *CharacterController) createCharacterHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.NewCharacter

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	character, err := controller.chars.Create(context.Username, req)

	if err != nil {
		serviceError(c, err)
		return
	}

	log.Info().Str("username", context.Username).Uint("characterId", character.ID).Msg("Created character")

	c.JSON(200, gin.H{
		"status":    200,
		"message":   "Character created",
		"character": character,
	})
}

func (controller *CharacterController) getCharacterHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := characterID(c)
	if !ok {
		return
	}

	sheet, err := controller.chars.Get(id, context.Username)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status":    200,
		"character": sheet,
	})
}

func (controller *CharacterController) updateCharacterHandler(c *gin.Context) {
	context, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := characterID(c)
	if !ok {
		return
	}

	var req service.CharacterUpdate

	err := c.ShouldBindJSON(&req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind JSON")
		c.JSON(400, gin.H{
			"status":  400,
			"message": "Bad Request",
		})
		return
	}

	err = controller.chars.Update(id, context.Username, req)

	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"status":  200,
		"message": "Character updated",
	})
}

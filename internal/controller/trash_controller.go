package controller

import (
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITrashController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	Empty(ctx *fiber.Ctx) error
}

type trashController struct {
	service service.ITrashService
}

func NewTrashController(service service.ITrashService) ITrashController {
	return &trashController{service: service}
}

func (c *trashController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/trash/v1")
	h.Use(auth)
	h.Get("", c.List)
	h.Delete("", c.Empty)
}

func (c *trashController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get trash", res))
}

func (c *trashController) Empty(ctx *fiber.Ctx) error {
	res, err := c.service.Empty(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	message := "Trash emptied"
	if res.NothingToDelete {
		message = "Trash is already empty"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

package controller

import (
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Sync(ctx *fiber.Ctx) error
}

type syncController struct {
	service service.ISyncService
}

func NewSyncController(service service.ISyncService) ISyncController {
	return &syncController{service: service}
}

func (c *syncController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/sync/v1", auth, c.Sync)
}

func (c *syncController) Sync(ctx *fiber.Ctx) error {
	res, err := c.service.Sync(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Collections reloaded", res))
}

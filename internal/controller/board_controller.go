package controller

import (
	"quiknote-be/internal/dto"
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBoardController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Layout(ctx *fiber.Ctx) error
	Move(ctx *fiber.Ctx) error
	BringToFront(ctx *fiber.Ctx) error
	Paint(ctx *fiber.Ctx) error
}

type boardController struct {
	service service.IBoardService
}

func NewBoardController(service service.IBoardService) IBoardController {
	return &boardController{service: service}
}

func (c *boardController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/board/v1")
	h.Use(auth)
	h.Get("", c.Layout)
	h.Put(":noteId/move", c.Move)
	h.Put(":noteId/front", c.BringToFront)
	h.Put(":noteId/color", c.Paint)
}

func (c *boardController) Layout(ctx *fiber.Ctx) error {
	res, err := c.service.Layout(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get board", res))
}

func (c *boardController) Move(ctx *fiber.Ctx) error {
	var req dto.MoveCardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	req.NoteId = ctx.Params("noteId")

	res, err := c.service.Move(ctx.Context(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Card moved", res))
}

func (c *boardController) BringToFront(ctx *fiber.Ctx) error {
	res, err := c.service.BringToFront(ctx.Context(), serverutils.SessionID(ctx), ctx.Params("noteId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Card brought to front", res))
}

func (c *boardController) Paint(ctx *fiber.Ctx) error {
	var req dto.PaintCardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	req.NoteId = ctx.Params("noteId")

	res, err := c.service.Paint(ctx.Context(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Card color updated", res))
}

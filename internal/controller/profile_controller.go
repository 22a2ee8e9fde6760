package controller

import (
	"quiknote-be/internal/dto"
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/service"
	"quiknote-be/internal/session"

	"github.com/gofiber/fiber/v2"
)

type IProfileController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	UploadAvatar(ctx *fiber.Ctx) error
}

type profileController struct {
	service service.IProfileService
}

func NewProfileController(service service.IProfileService) IProfileController {
	return &profileController{service: service}
}

func (c *profileController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/profile/v1")
	h.Use(auth)
	h.Get("", c.Show)
	h.Put("", c.Update)
	h.Post("/avatar", c.UploadAvatar)
}

func (c *profileController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.Context(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *profileController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile updated", res))
}

func (c *profileController) UploadAvatar(ctx *fiber.Ctx) error {
	fh, err := ctx.FormFile("avatar")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing avatar file")
	}
	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.service.UploadAvatar(ctx.Context(), serverutils.SessionID(ctx), session.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        file,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Avatar updated", res))
}

package server

import (
	"quiknote-be/internal/board"
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/remote"
	"quiknote-be/internal/remote/supabase"
	"quiknote-be/internal/session"
	"quiknote-be/internal/store"
	"quiknote-be/internal/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker"
)

// statusRules maps domain errors to HTTP statuses. Order matters: local
// failures come before the remote sentinels they may wrap.
func statusRules() []serverutils.StatusRule {
	return []serverutils.StatusRule{
		{Err: workspace.ErrSessionExpired, Code: fiber.StatusUnauthorized},
		{Err: store.ErrNotAuthenticated, Code: fiber.StatusUnauthorized},
		{Err: session.ErrNotAuthenticated, Code: fiber.StatusUnauthorized},

		{Err: store.ErrTitleRequired, Code: fiber.StatusBadRequest},
		{Err: store.ErrNameRequired, Code: fiber.StatusBadRequest},
		{Err: session.ErrNoChanges, Code: fiber.StatusBadRequest},
		{Err: session.ErrPasswordRequired, Code: fiber.StatusBadRequest},
		{Err: session.ErrNotAnImage, Code: fiber.StatusBadRequest},
		{Err: session.ErrImageTooLarge, Code: fiber.StatusBadRequest},
		{Err: board.ErrInvalidColor, Code: fiber.StatusBadRequest},

		{Err: store.ErrNoteNotFound, Code: fiber.StatusNotFound},
		{Err: store.ErrNotebookNotFound, Code: fiber.StatusNotFound},

		{Err: gobreaker.ErrOpenState, Code: fiber.StatusServiceUnavailable},
		{Err: gobreaker.ErrTooManyRequests, Code: fiber.StatusServiceUnavailable},
		{Err: supabase.ErrNotConfigured, Code: fiber.StatusServiceUnavailable},

		{Err: remote.ErrInvalidCredentials, Code: fiber.StatusUnauthorized},
		{Err: remote.ErrUnauthorized, Code: fiber.StatusUnauthorized},
		{Err: remote.ErrNotFound, Code: fiber.StatusNotFound},
		{Err: remote.ErrConflict, Code: fiber.StatusConflict},
	}
}

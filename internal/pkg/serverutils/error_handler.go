package serverutils

import (
	"errors"

	"quiknote-be/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// StatusRule maps errors matching Err (errors.Is) to an HTTP status.
type StatusRule struct {
	Err  error
	Code int
}

// userMessage is implemented by errors that carry a short notice for the
// user, like the store's and session's operation errors.
type userMessage interface {
	Message() string
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope. Rules are checked in order; the first match wins.
func ErrorHandlerMiddleware(log logger.ILogger, rules ...StatusRule) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse(FieldErrors(verrs)))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		code, rule := resolve(err, rules)
		message := messageFor(err, rule, code)
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
				"error":  err,
			})
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func resolve(err error, rules []StatusRule) (int, *StatusRule) {
	for i := range rules {
		if errors.Is(err, rules[i].Err) {
			return rules[i].Code, &rules[i]
		}
	}
	return fiber.StatusInternalServerError, nil
}

// messageFor prefers the operation notice ("Failed to create note") for
// server-side failures and the matched sentinel's text for client errors.
func messageFor(err error, rule *StatusRule, code int) string {
	var um userMessage
	hasNotice := errors.As(err, &um)
	switch {
	case rule != nil && code < fiber.StatusInternalServerError:
		return rule.Err.Error()
	case hasNotice:
		return um.Message()
	case rule != nil:
		return rule.Err.Error()
	default:
		return "Internal server error"
	}
}

package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/pkg/logger"
)

var (
	errMissing = errors.New("note not found")
	errDown    = errors.New("backend unavailable")
)

type opError struct{ err error }

func (e *opError) Error() string   { return "failed to save note: " + e.err.Error() }
func (e *opError) Unwrap() error   { return e.err }
func (e *opError) Message() string { return "Failed to save note" }

type body struct {
	Success bool              `json:"success"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path, payload string, header map[string]string) (int, body) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var b body
	_ = json.NewDecoder(resp.Body).Decode(&b)
	return resp.StatusCode, b
}

type signupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger(), StatusRule{Err: errMissing, Code: fiber.StatusNotFound}))
	app.Get("/missing", func(ctx *fiber.Ctx) error { return &opError{err: errMissing} })
	app.Get("/down", func(ctx *fiber.Ctx) error { return &opError{err: errDown} })
	app.Get("/plain", func(ctx *fiber.Ctx) error { return errDown })
	app.Get("/fiber", func(ctx *fiber.Ctx) error { return fiber.NewError(fiber.StatusConflict, "taken") })
	app.Post("/signup", func(ctx *fiber.Ctx) error {
		var req signupRequest
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
		if err := ValidateRequest(req); err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", req))
	})

	code, b := call(t, app, "GET", "/missing", "", nil)
	assert.Equal(t, 404, code)
	assert.Equal(t, "note not found", b.Message)
	assert.False(t, b.Success)

	code, b = call(t, app, "GET", "/down", "", nil)
	assert.Equal(t, 500, code)
	assert.Equal(t, "Failed to save note", b.Message)

	code, b = call(t, app, "GET", "/plain", "", nil)
	assert.Equal(t, 500, code)
	assert.Equal(t, "Internal server error", b.Message)

	code, b = call(t, app, "GET", "/fiber", "", nil)
	assert.Equal(t, 409, code)
	assert.Equal(t, "taken", b.Message)

	code, b = call(t, app, "POST", "/signup", `{"email":"nope"}`, nil)
	assert.Equal(t, 400, code)
	assert.Equal(t, "must be a valid email", b.Data["email"])
	assert.Equal(t, "is required", b.Data["name"])

	code, b = call(t, app, "POST", "/signup", `{"email":"a@x.com","name":"Ann"}`, nil)
	assert.Equal(t, 200, code)
	assert.True(t, b.Success)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, exp, err := issuer.Issue("sid-1", "user-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionId)
	assert.Equal(t, "user-1", claims.UserId)

	_, err = NewTokenIssuer("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("secret", -time.Minute)
	stale, _, err := expired.Issue("sid-1", "user-1")
	require.NoError(t, err)
	_, err = issuer.Parse(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJwtMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	app := fiber.New()
	app.Get("/me", JwtMiddleware(issuer), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", map[string]string{"sid": SessionID(ctx)}))
	})

	code, _ := call(t, app, "GET", "/me", "", nil)
	assert.Equal(t, 401, code)

	code, b := call(t, app, "GET", "/me", "", map[string]string{"Authorization": "Bearer junk"})
	assert.Equal(t, 401, code)
	assert.Equal(t, "Invalid token", b.Message)

	token, _, err := issuer.Issue("sid-9", "user-9")
	require.NoError(t, err)
	code, b = call(t, app, "GET", "/me", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, 200, code)
	assert.Equal(t, "sid-9", b.Data["sid"])

	code, b = call(t, app, "GET", "/me?token="+token, "", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, "sid-9", b.Data["sid"])
}

package serverutils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserId    = "user_id"
	LocalSessionId = "session_id"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	SessionId string
	UserId    string
}

// TokenIssuer mints and verifies the BFF's own bearer tokens. A token names
// the server-side workspace ("sid") and the backend user it belongs to.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(sessionId, userId string) (string, time.Time, error) {
	exp := t.now().Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":     sessionId,
		"user_id": userId,
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (t *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sid, _ := claims["sid"].(string)
	uid, _ := claims["user_id"].(string)
	if sid == "" || uid == "" {
		return nil, ErrInvalidToken
	}
	return &Claims{SessionId: sid, UserId: uid}, nil
}

// BearerToken reads the Authorization header, falling back to the "token"
// query parameter used by browser websocket clients.
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ctx.Query("token")
}

func JwtMiddleware(issuer *TokenIssuer) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals(LocalUserId, claims.UserId)
		ctx.Locals(LocalSessionId, claims.SessionId)
		return ctx.Next()
	}
}

// SessionID returns the workspace id set by JwtMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	sid, _ := ctx.Locals(LocalSessionId).(string)
	return sid
}

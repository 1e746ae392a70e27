package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie = "session"
	CtxSessionKey = "session_id"
)

// Middleware oturum token'ını Authorization başlığından ya da session
// çerezinden okur. Başlık varsa çerez dikkate alınmaz.
func Middleware(secret string, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, err := tokenFrom(c)
		if err != nil {
			return err
		}

		claims, err := ParseToken(secret, tokenStr, now())
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş oturum")
		}

		c.Locals(CtxSessionKey, claims.ID)
		return c.Next()
	}
}

func tokenFrom(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}
		return parts[1], nil
	}
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie, nil
	}
	return "", fiber.NewError(fiber.StatusUnauthorized, "Oturum bulunamadı, lütfen giriş yapın")
}

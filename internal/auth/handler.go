package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
)

type LoginRequest struct {
	Code string `json:"code"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, now func() time.Time, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		at := now().In(cfg.Location)
		if !Verify(strings.TrimSpace(body.Code), at) {
			log.Info("Hatalı giriş kodu denemesi", zap.String("ip", c.IP()))
			return fiber.NewError(fiber.StatusUnauthorized, "Giriş kodu hatalı")
		}

		token, expiresAt, err := GenerateToken(cfg.JWTSecret, at, cfg.SessionTTL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  expiresAt,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		return c.JSON(LoginResponse{Token: token, ExpiresAt: expiresAt})
	}
}

// POST /api/auth/logout
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.ClearCookie(SessionCookie)
		return c.JSON(fiber.Map{"message": "Çıkış yapıldı"})
	}
}

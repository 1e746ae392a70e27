package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/audit"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/auth"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/dashboard"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/inventory"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/patient"
)

// Deps uygulamanın kurulması için gerekenler. Now nil ise time.Now kullanılır.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Now    func() time.Time
}

// New servisleri kurar ve tüm route'ları bağlanmış fiber uygulamasını döner.
func New(d Deps) *fiber.App {
	cfg := d.Config
	now := d.Now
	if now == nil {
		now = time.Now
	}
	local := func() time.Time { return now().In(cfg.Location) }

	auditLog := audit.New(d.DB, now)
	ledger := inventory.NewLedger(d.DB, cfg.Catalog, auditLog, d.Log.Named("stock"))
	registry := patient.NewRegistry(d.DB, ledger, d.Log.Named("patient"))

	app := fiber.New(fiber.Config{
		AppName:      "dentsun-implant-takip",
		ErrorHandler: ErrorHandler(d.Log),
	})

	app.Use(recover.New())
	origins := corsOrigins(cfg.CORSOrigins)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "*", // fiber "*" ile credentials'a izin vermez
	}))

	api := app.Group("/api")

	// Public
	api.Get("/health", healthHandler(d.DB))
	api.Post("/auth/login", auth.LoginHandler(cfg, now, d.Log.Named("auth")))
	api.Post("/auth/logout", auth.LogoutHandler())

	// Protected
	protected := api.Group("", auth.Middleware(cfg.JWTSecret, now))

	protected.Get("/catalog", inventory.CatalogHandler(cfg.Catalog))

	// Stok
	protected.Get("/stock", inventory.GetStockHandler(ledger))
	protected.Put("/stock", inventory.SaveStockHandler(ledger))
	protected.Post("/stock/adjust", inventory.AdjustStockHandler(ledger))
	protected.Get("/stock/export.csv", inventory.ExportCSVHandler(ledger, local))
	protected.Get("/stock/export.xlsx", inventory.ExportXLSXHandler(ledger, local))

	// Hastalar
	protected.Get("/patients", patient.ListHandler(registry, cfg.Catalog))
	protected.Get("/patients/:id", patient.GetHandler(registry, cfg.Catalog))
	protected.Post("/patients", patient.CreateHandler(registry, cfg.Catalog))
	protected.Put("/patients/:id", patient.UpdateHandler(registry, cfg.Catalog))
	protected.Delete("/patients/:id", patient.DeleteHandler(registry, cfg.Catalog))

	// Stok hareketleri
	protected.Get("/logs", audit.ListHandler(auditLog, cfg.Catalog, cfg.Location))

	// Dashboard
	protected.Get("/dashboard/usage", dashboard.UsageHandler(d.DB, cfg.Catalog, local))

	return app
}

// ErrorHandler servis hatalarını HTTP durum kodlarına çevirir. Beklenmeyen hatalar
// loglanır, istemciye ayrıntı verilmez.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Beklenmeyen sunucu hatası"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			code, msg = fe.Code, fe.Message
		case errors.Is(err, config.ErrUnknownBranch):
			code, msg = fiber.StatusBadRequest, "Şube bulunamadı"
		case errors.Is(err, inventory.ErrUnknownSize):
			code, msg = fiber.StatusBadRequest, "Ölçü katalogda yok"
		case errors.Is(err, inventory.ErrQuantityOutOfRange):
			code, msg = fiber.StatusBadRequest, err.Error()
		case errors.Is(err, patient.ErrEmptyName):
			code, msg = fiber.StatusBadRequest, "Hasta adı boş olamaz"
		case errors.Is(err, patient.ErrNotFound):
			code, msg = fiber.StatusNotFound, "Hasta bulunamadı"
		case errors.Is(err, inventory.ErrInvalidStockState):
			code, msg = fiber.StatusConflict, err.Error()
		default:
			log.Error("Beklenmeyen hata",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": msg,
		})
	}
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Veritabanına ulaşılamıyor")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// CORS origins'i virgülle ayrılmış string'den temizlenmiş listeye çevirir.
func corsOrigins(s string) string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

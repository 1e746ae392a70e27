package audit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

type StockLogResponse struct {
	ID        uint               `json:"id"`
	CreatedAt string             `json:"created_at"`
	Branch    string             `json:"branch"`
	Diameter  string             `json:"diameter"`
	Length    string             `json:"length"`
	Qty       int                `json:"qty"`
	Action    models.StockAction `json:"action"`
}

// GET /api/logs?branch=Dentsun%20Menemen&limit=200
func ListHandler(l *Log, catalog config.Catalog, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch := c.Query("branch")
		if branch != "" && !catalog.HasBranch(branch) {
			return fiber.NewError(fiber.StatusBadRequest, "Şube bulunamadı")
		}

		limit := DefaultLimit
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "limit geçersiz")
			}
			limit = n
		}

		logs, err := l.Recent(c.UserContext(), branch, limit)
		if err != nil {
			return err
		}

		resp := make([]StockLogResponse, 0, len(logs))
		for _, r := range logs {
			resp = append(resp, StockLogResponse{
				ID:        r.ID,
				CreatedAt: r.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
				Branch:    r.Branch,
				Diameter:  config.FormatSize(r.Diameter),
				Length:    config.FormatSize(r.Length),
				Qty:       r.Qty,
				Action:    r.Action,
			})
		}

		return c.JSON(resp)
	}
}

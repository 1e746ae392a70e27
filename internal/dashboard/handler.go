package dashboard

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
)

// GET /api/dashboard/usage?branch=&period=daily&count=7
func UsageHandler(db *gorm.DB, catalog config.Catalog, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := catalog.ResolveBranch(c.Query("branch"))
		if err != nil {
			return err
		}

		period := Period(c.Query("period", string(PeriodDaily)))
		count := DefaultCount(period)
		if s := c.Query("count"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > maxBuckets {
				return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
			}
			count = n
		}

		chart, err := Usage(c.UserContext(), db, branch, period, count, now())
		if errors.Is(err, ErrInvalidPeriod) {
			return fiber.NewError(fiber.StatusBadRequest, "period daily, weekly veya monthly olmalı")
		}
		if err != nil {
			return err
		}
		return c.JSON(chart)
	}
}

package inventory

import (
	"bytes"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

type CatalogResponse struct {
	Branches  []string `json:"branches"`
	Diameters []string `json:"diameters"`
	Lengths   []string `json:"lengths"`
}

type StockCellResponse struct {
	Length string `json:"length"`
	Qty    int    `json:"qty"`
	Level  Level  `json:"level,omitempty"`
}

type StockRowResponse struct {
	Diameter string              `json:"diameter"`
	Cells    []StockCellResponse `json:"cells"`
}

type StockGridResponse struct {
	Branch  string             `json:"branch"`
	Lengths []string           `json:"lengths"`
	Rows    []StockRowResponse `json:"rows"`
}

type SaveStockItem struct {
	Diameter float64 `json:"diameter"`
	Length   float64 `json:"length"`
	Qty      int     `json:"qty"`
}

type SaveStockRequest struct {
	Branch string          `json:"branch"`
	Items  []SaveStockItem `json:"items"`
}

type AdjustStockRequest struct {
	Branch   string  `json:"branch"`
	Diameter float64 `json:"diameter"`
	Length   float64 `json:"length"`
	Delta    int     `json:"delta"`
}

func sizes(vs []float64) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, config.FormatSize(v))
	}
	return out
}

func gridResponse(g Grid) StockGridResponse {
	resp := StockGridResponse{Branch: g.Branch, Lengths: sizes(g.Lengths), Rows: make([]StockRowResponse, 0, len(g.Rows))}
	for _, row := range g.Rows {
		r := StockRowResponse{Diameter: config.FormatSize(row.Diameter), Cells: make([]StockCellResponse, 0, len(row.Qty))}
		for j, q := range row.Qty {
			r.Cells = append(r.Cells, StockCellResponse{Length: config.FormatSize(g.Lengths[j]), Qty: q, Level: LevelOf(q)})
		}
		resp.Rows = append(resp.Rows, r)
	}
	return resp
}

// GET /api/catalog
func CatalogHandler(catalog config.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(CatalogResponse{
			Branches:  catalog.Branches(),
			Diameters: sizes(catalog.Diameters()),
			Lengths:   sizes(catalog.Lengths()),
		})
	}
}

// GET /api/stock?branch=
func GetStockHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := ledger.Catalog().ResolveBranch(c.Query("branch"))
		if err != nil {
			return err
		}
		g, err := ledger.Grid(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(gridResponse(g))
	}
}

// PUT /api/stock
// Tablodaki tüm hücreler tek seferde kaydedilir; negatif değerler 0 kabul edilir.
func SaveStockHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		branch, err := ledger.Catalog().ResolveBranch(body.Branch)
		if err != nil {
			return err
		}

		cells := make([]Cell, 0, len(body.Items))
		for _, it := range body.Items {
			qty := it.Qty
			if qty < 0 {
				qty = 0
			}
			cells = append(cells, Cell{Diameter: it.Diameter, Length: it.Length, Qty: qty})
		}

		changed, err := ledger.SetGrid(c.UserContext(), branch, cells)
		if err != nil {
			return err
		}

		g, err := ledger.Grid(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"changed": changed,
			"stock":   gridResponse(g),
		})
	}
}

// POST /api/stock/adjust
func AdjustStockHandler(ledger *Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Delta == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "delta 0 olamaz")
		}

		branch, err := ledger.Catalog().ResolveBranch(body.Branch)
		if err != nil {
			return err
		}

		qty, err := ledger.Adjust(c.UserContext(), branch, body.Diameter, body.Length, body.Delta, models.ActionManualEdit)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"branch":   branch,
			"diameter": config.FormatSize(body.Diameter),
			"length":   config.FormatSize(body.Length),
			"qty":      qty,
		})
	}
}

// GET /api/stock/export.csv?branch=
func ExportCSVHandler(ledger *Ledger, now func() time.Time) fiber.Handler {
	return exportHandler(ledger, now, "csv", "text/csv; charset=utf-8", WriteCSV)
}

// GET /api/stock/export.xlsx?branch=
func ExportXLSXHandler(ledger *Ledger, now func() time.Time) fiber.Handler {
	return exportHandler(ledger, now, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", WriteXLSX)
}

func exportHandler(ledger *Ledger, now func() time.Time, ext, contentType string, write func(io.Writer, Grid, time.Time) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := ledger.Catalog().ResolveBranch(c.Query("branch"))
		if err != nil {
			return err
		}
		g, err := ledger.Grid(c.UserContext(), branch)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := write(&buf, g, now()); err != nil {
			return err
		}

		c.Attachment(ExportFileName(branch, ext))
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(buf.Bytes())
	}
}

package inventory

import (
	"context"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

const lowStockThreshold = 2

type Level string

const (
	LevelOK   Level = ""
	LevelLow  Level = "low"
	LevelZero Level = "zero"
)

func LevelOf(qty int) Level {
	switch {
	case qty <= 0:
		return LevelZero
	case qty <= lowStockThreshold:
		return LevelLow
	}
	return LevelOK
}

// Grid bir şubenin stok tablosu: satırlar çap, sütunlar uzunluk.
type Grid struct {
	Branch  string
	Lengths []float64
	Rows    []GridRow
}

type GridRow struct {
	Diameter float64
	Qty      []int // Lengths ile aynı sırada
}

// Grid GetAll sonucunu çap x uzunluk tablosuna çevirir.
func (l *Ledger) Grid(ctx context.Context, branch string) (Grid, error) {
	items, err := l.GetAll(ctx, branch)
	if err != nil {
		return Grid{}, err
	}
	return newGrid(l.catalog, branch, items), nil
}

// items GetAll sırasında (çap, sonra uzunluk) olmalıdır.
func newGrid(catalog config.Catalog, branch string, items []models.StockItem) Grid {
	lengths := catalog.Lengths()
	g := Grid{Branch: branch, Lengths: lengths}

	i := 0
	for _, d := range catalog.Diameters() {
		row := GridRow{Diameter: d, Qty: make([]int, len(lengths))}
		for j := range lengths {
			row.Qty[j] = items[i].Qty
			i++
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownBranch = errors.New("şube bulunamadı")

// Catalog sabit şube listesi ve izin verilen implant ölçüleridir.
// Oluşturulduktan sonra değiştirilmez; bileşenlere değer olarak verilir.
type Catalog struct {
	branches  []string
	diameters []decimal.Decimal
	lengths   []decimal.Decimal
}

func DefaultCatalog() Catalog {
	return NewCatalog(
		[]string{"Dentsun Menemen", "Dentsun Karşıyaka"},
		[]string{"3.5", "4", "4.5", "5", "5.5"},
		[]string{"7", "8.5", "10", "11.5", "13"},
	)
}

// NewCatalog ondalık metinlerden katalog kurar. Hatalı bir değer programlama hatasıdır.
func NewCatalog(branches, diameters, lengths []string) Catalog {
	return Catalog{
		branches:  append([]string(nil), branches...),
		diameters: mustDecimals(diameters),
		lengths:   mustDecimals(lengths),
	}
}

func mustDecimals(values []string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.RequireFromString(v))
	}
	return out
}

func (c Catalog) Branches() []string { return append([]string(nil), c.branches...) }

func (c Catalog) Diameters() []float64 { return floats(c.diameters) }

func (c Catalog) Lengths() []float64 { return floats(c.lengths) }

func floats(ds []decimal.Decimal) []float64 {
	out := make([]float64, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.InexactFloat64())
	}
	return out
}

// DefaultBranch ilk şubedir; şube belirtilmeyen isteklerde kullanılır.
func (c Catalog) DefaultBranch() string {
	if len(c.branches) == 0 {
		return ""
	}
	return c.branches[0]
}

func (c Catalog) HasBranch(branch string) bool {
	for _, b := range c.branches {
		if b == branch {
			return true
		}
	}
	return false
}

// ResolveBranch boş değeri varsayılan şubeye çevirir, bilinmeyen şubeyi reddeder.
func (c Catalog) ResolveBranch(branch string) (string, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return c.DefaultBranch(), nil
	}
	if !c.HasBranch(branch) {
		return "", fmt.Errorf("%w: %s", ErrUnknownBranch, branch)
	}
	return branch, nil
}

func (c Catalog) HasDiameter(d float64) bool { return contains(c.diameters, d) }

func (c Catalog) HasLength(l float64) bool { return contains(c.lengths, l) }

func (c Catalog) HasSize(diameter, length float64) bool {
	return c.HasDiameter(diameter) && c.HasLength(length)
}

func contains(ds []decimal.Decimal, v float64) bool {
	dv := decimal.NewFromFloat(v)
	for _, d := range ds {
		if d.Equal(dv) {
			return true
		}
	}
	return false
}

// ParseSize "3.5" veya "3,5" biçimindeki ölçüyü okur.
func ParseSize(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// FormatSize ölçüyü gereksiz sıfırlar olmadan yazar (4 -> "4", 8.5 -> "8.5").
func FormatSize(v float64) string {
	return decimal.NewFromFloat(v).String()
}

package inventory

import (
	"errors"
	"fmt"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
)

// MaxQuantity tek bir hücrede tutulabilecek en yüksek adet.
const MaxQuantity = 100_000

var (
	ErrInvalidStockState  = errors.New("stok negatife düşemez")
	ErrUnknownSize        = errors.New("katalogda olmayan ölçü")
	ErrQuantityOutOfRange = errors.New("adet izin verilen aralığın dışında")
)

// checkQuantity delta veya hedef adedin toplama taşmayacak aralıkta olduğunu doğrular.
func checkQuantity(n int) error {
	if n > MaxQuantity || n < -MaxQuantity {
		return fmt.Errorf("%w: %d (en fazla %d)", ErrQuantityOutOfRange, n, MaxQuantity)
	}
	return nil
}

// StockError bir ayarlamanın stoku negatife düşüreceği durumu anlatır.
type StockError struct {
	Branch   string
	Diameter float64
	Length   float64
	Current  int
	Delta    int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stok yetersiz: %s %sx%s (mevcut %d, değişim %d)",
		e.Branch, config.FormatSize(e.Diameter), config.FormatSize(e.Length), e.Current, e.Delta)
}

func (e *StockError) Unwrap() error { return ErrInvalidStockState }

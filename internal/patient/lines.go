package patient

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
)

// Bir formda en fazla bu kadar implant satırı işlenir.
const MaxLines = 20

// Field form alanlarının JSON karşılığıdır: sayı, metin veya null kabul eder.
// Boş ya da bozuk değerler satırın atlanmasına yol açar, isteğin reddine değil.
type Field string

func (f *Field) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	*f = Field(b)
	return nil
}

type LineInput struct {
	Diameter Field `json:"diameter"`
	Length   Field `json:"length"`
	Qty      Field `json:"qty"`
}

// ParseLines form satırlarını okur. Çap, uzunluk veya adedi eksik/okunamayan ve
// adedi pozitif olmayan satırlar sessizce atlanır. Katalog kontrolü Registry'dedir.
func ParseLines(in []LineInput) []Line {
	if len(in) > MaxLines {
		in = in[:MaxLines]
	}

	out := make([]Line, 0, len(in))
	for _, li := range in {
		d, ok := config.ParseSize(string(li.Diameter))
		if !ok {
			continue
		}
		l, ok := config.ParseSize(string(li.Length))
		if !ok {
			continue
		}
		q, ok := parseQty(string(li.Qty))
		if !ok {
			continue
		}
		out = append(out, Line{Diameter: d, Length: l, Qty: q})
	}
	return out
}

// parseQty "2", "2.0" ve "2e0" gibi tam sayı değerli adetleri kabul eder.
// Kesirli, pozitif olmayan veya int aralığını aşan değerler reddedilir.
func parseQty(s string) (int, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsInteger() || !d.IsPositive() || !d.BigInt().IsInt64() {
		return 0, false
	}
	q := d.IntPart()
	if int64(int(q)) != q {
		return 0, false
	}
	return int(q), true
}

package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
)

// Dosyadaki tarih tr-TR yerel biçimindedir.
const exportDateLayout = "02.01.2006 15:04:05"

const xlsxSheet = "Stok"

func exportHeader(g Grid, at time.Time) [][]string {
	header := []string{"Diameter/Length"}
	for _, l := range g.Lengths {
		header = append(header, config.FormatSize(l))
	}
	return [][]string{
		{"Branch:", g.Branch},
		{"Date:", at.Format(exportDateLayout)},
		{},
		header,
	}
}

// WriteCSV stok tablosunu CSV olarak yazar.
func WriteCSV(w io.Writer, g Grid, at time.Time) error {
	cw := csv.NewWriter(w)
	for _, rec := range exportHeader(g, at) {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv yazılamadı: %w", err)
		}
	}
	for _, row := range g.Rows {
		rec := []string{config.FormatSize(row.Diameter)}
		for _, q := range row.Qty {
			rec = append(rec, strconv.Itoa(q))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv yazılamadı: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX aynı tabloyu Excel dosyası olarak yazar. Adetler sayı hücresidir.
func WriteXLSX(w io.Writer, g Grid, at time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return fmt.Errorf("sheet adı verilemedi: %w", err)
	}

	rowNum := 1
	setRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		rowNum++
		if len(values) == 0 {
			return nil
		}
		return f.SetSheetRow(xlsxSheet, cell, &values)
	}

	for _, rec := range exportHeader(g, at) {
		values := make([]interface{}, 0, len(rec))
		for _, v := range rec {
			values = append(values, v)
		}
		if err := setRow(values); err != nil {
			return fmt.Errorf("excel satırı yazılamadı: %w", err)
		}
	}
	for _, row := range g.Rows {
		values := []interface{}{row.Diameter}
		for _, q := range row.Qty {
			values = append(values, q)
		}
		if err := setRow(values); err != nil {
			return fmt.Errorf("excel satırı yazılamadı: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("excel dosyası yazılamadı: %w", err)
	}
	return nil
}

var turkishDotless = runes.Map(func(r rune) rune {
	switch r {
	case 'ı':
		return 'i'
	case 'İ':
		return 'I'
	}
	return r
})

// ExportFileName indirme dosya adını üretir: "Dentsun Karşıyaka" -> "Dentsun_Stok_Dentsun_Karsiyaka.csv".
func ExportFileName(branch, ext string) string {
	t := transform.Chain(turkishDotless, norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, branch)
	if err != nil {
		ascii = branch
	}
	return fmt.Sprintf("Dentsun_Stok_%s.%s", strings.Join(strings.Fields(ascii), "_"), ext)
}

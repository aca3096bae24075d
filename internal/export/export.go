// Package export builds the downloadable XLSX workbook for a comprobante
// list: one data sheet plus one summary sheet. It operates purely in memory
// on records the caller already fetched (and possibly dashboard-filtered);
// its own date range composes on top of that list.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/filter"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
)

const (
	sheetData    = "Comprobantes"
	sheetSummary = "Resumen"

	// NA renders missing optional fields; cells are never left empty.
	NA = "N/A"

	// RangoTodos describes an export without a date filter.
	RangoTodos = "Todos los registros"
)

// Options narrow an export. Range composes with whatever filtering the caller
// already did; Filename overrides the timestamped default.
type Options struct {
	Range    *filter.DateRange
	Filename string
}

// Result reports what a successful export produced.
type Result struct {
	Filename   string          `json:"filename"`
	Records    int             `json:"records"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// BuildXLSX constructs the workbook. On any construction failure no partial
// file is returned. Records with unparseable dates are excluded and logged,
// whether or not a range was given.
func BuildXLSX(list []models.Comprobante, opts Options, now time.Time, log *zap.Logger) (*excelize.File, Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	rows := make([]models.Comprobante, 0, len(list))
	for i := range list {
		c := &list[i]
		if _, err := c.FechaDia(); err != nil {
			log.Error("comprobante con fecha invalida excluido de la exportacion",
				zap.String("comprobante_id", c.ID.String()),
				zap.String("fecha", c.Fecha),
				zap.Error(err))
			continue
		}
		if opts.Range != nil && !filter.InRange(c, *opts.Range, log) {
			continue
		}
		rows = append(rows, *c)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetData); err != nil {
		return nil, Result{}, fmt.Errorf("rename data sheet: %w", err)
	}

	headers := []string{
		"#", "Beneficiario", "Banco Emisor", "Fecha", "Hora",
		"Valor", "Valor Numérico", "Número Comprobante", "Número Referencia",
		"Estado", "Moneda", "Usuario", "Fecha Registro",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetData, cell, h); err != nil {
			return nil, Result{}, fmt.Errorf("write header: %w", err)
		}
	}

	totalValue := decimal.Zero
	for idx := range rows {
		c := &rows[idx]
		if c.EsValido {
			totalValue = totalValue.Add(c.ValorTransferencia)
		}

		estado := "Inválido"
		if c.EsValido {
			estado = "Válido"
		}

		amount, _ := c.ValorTransferencia.Float64()
		values := []interface{}{
			idx + 1,
			orNA(c.NombreBeneficiario),
			orNA(c.BancoEmisor),
			formatFecha(c.Fecha),
			orNA(c.Hora),
			FormatCOP(c.ValorTransferencia),
			amount,
			orNA(c.NumeroComprobante),
			orNA(c.NumeroReferencia),
			estado,
			orNA(c.Moneda),
			c.UserID,
			c.CreatedAt.Format("02/01/2006 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, idx+2)
			if err := f.SetCellValue(sheetData, cell, v); err != nil {
				return nil, Result{}, fmt.Errorf("write row %d: %w", idx+1, err)
			}
		}
	}

	_ = f.SetColWidth(sheetData, "A", "A", 6)
	_ = f.SetColWidth(sheetData, "B", "C", 24)
	_ = f.SetColWidth(sheetData, "D", "E", 12)
	_ = f.SetColWidth(sheetData, "F", "G", 16)
	_ = f.SetColWidth(sheetData, "H", "M", 18)

	if err := writeSummary(f, rows, totalValue, opts.Range, now); err != nil {
		return nil, Result{}, err
	}

	index, err := f.GetSheetIndex(sheetData)
	if err != nil {
		return nil, Result{}, fmt.Errorf("locate data sheet: %w", err)
	}
	f.SetActiveSheet(index)

	filename := opts.Filename
	if filename == "" {
		filename = fmt.Sprintf("comprobantes_%s.xlsx", now.Format("20060102_1504"))
	}

	return f, Result{
		Filename:   filename,
		Records:    len(rows),
		TotalValue: totalValue,
	}, nil
}

func writeSummary(f *excelize.File, rows []models.Comprobante, totalValue decimal.Decimal, r *filter.DateRange, now time.Time) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	validos := 0
	for i := range rows {
		if rows[i].EsValido {
			validos++
		}
	}

	rango := RangoTodos
	if r != nil {
		from, to := r.Bounds()
		rango = fmt.Sprintf("%s - %s", from.Format("02/01/2006"), to.Format("02/01/2006"))
	}

	lines := [][2]interface{}{
		{"Total comprobantes", len(rows)},
		{"Comprobantes válidos", validos},
		{"Comprobantes inválidos", len(rows) - validos},
		{"Valor total válido", FormatCOP(totalValue)},
		{"Fecha de exportación", now.Format("02/01/2006 15:04")},
		{"Rango", rango},
	}
	for i, line := range lines {
		row := i + 1
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), line[0]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), line[1]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	_ = f.SetColWidth(sheetSummary, "A", "A", 24)
	_ = f.SetColWidth(sheetSummary, "B", "B", 28)
	return nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NA
	}
	return s
}

// formatFecha converts the stored YYYY-MM-DD to dd/MM/yyyy. Rows reaching
// this point already parsed once, so a failure here never happens in
// practice; fall back to the raw string just in case.
func formatFecha(fecha string) string {
	t, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return fecha
	}
	return t.Format("02/01/2006")
}

// FormatCOP renders a peso amount with dot thousands separators, e.g.
// "$1.234.567" or "$1.234,50". Decimals appear only when non-zero.
func FormatCOP(d decimal.Decimal) string {
	neg := d.IsNegative()
	abs := d.Abs()

	entero := abs.Truncate(0)
	frac := abs.Sub(entero)

	digits := entero.String()
	var b strings.Builder
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}

	out := "$" + b.String()
	if !frac.IsZero() {
		cents := frac.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		out += fmt.Sprintf(",%02d", cents)
	}
	if neg {
		out = "-" + out
	}
	return out
}

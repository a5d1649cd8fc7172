package sweep

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
)

// Columns of the sweep table, in order
var Columns = []string{
	"No",
	"Frequency (Hz)",
	"Omega (rad/s)",
	"Xl (Ω)",
	"Xc (Ω)",
	"Series |Z| (Ω)",
	"Parallel |Z| (Ω)",
}

const (
	summarySheet = "Summary"
	sweepSheet   = "Sweep"
)

// Save writes t to path. The extension selects the format: ".xlsx" or
// ".tsv"/".txt".
func Save(path string, t *Table) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return SaveXLSX(path, t)
	case ".tsv", ".txt":
		fp, err := os.Create(path)
		if err != nil {
			return exportError(err, path)
		}
		defer fp.Close()
		if err := WriteTSV(fp, t); err != nil {
			return err
		}
		return exportError(fp.Close(), path)
	default:
		return mdwerror.New("unsupported export format").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("path", path).
			WithOperation("sweep.Save")
	}
}

// SaveXLSX writes t to an Excel workbook at path
func SaveXLSX(path string, t *Table) error {
	f, err := workbook(t)
	if err != nil {
		return err
	}
	defer f.Close()
	return exportError(f.SaveAs(path), path)
}

// WriteXLSX writes t as an Excel workbook to w
func WriteXLSX(w io.Writer, t *Table) error {
	f, err := workbook(t)
	if err != nil {
		return err
	}
	defer f.Close()
	return exportError(f.Write(w), "")
}

func workbook(t *Table) (*excelize.File, error) {
	f := excelize.NewFile()

	// Summary
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, exportError(err, "")
	}
	summary := [][]interface{}{
		{"Parameter", "Value", "Unit"},
		{"Inductance", cellText(t.Params.Inductance), "H"},
		{"Capacitance", cellText(t.Params.Capacitance), "F"},
		{"Resonant frequency", cellText(t.Resonance), "Hz"},
		{"Start", cellText(t.Params.Start), "Hz"},
		{"Stop", cellText(t.Params.Stop), "Hz"},
		{"Points", len(t.Points), ""},
		{"Scale", t.Params.Scale.String(), ""},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			f.Close()
			return nil, exportError(err, "")
		}
	}

	// Sweep
	if _, err := f.NewSheet(sweepSheet); err != nil {
		f.Close()
		return nil, exportError(err, "")
	}
	for col, name := range Columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sweepSheet, cell, name)
	}
	for i, p := range t.Points {
		row := []interface{}{
			p.Index + 1,
			cellValue(p.Frequency),
			cellValue(p.Omega),
			cellValue(p.InductiveReactance),
			cellValue(p.CapacitiveReactance),
			cellValue(p.Series),
			cellValue(p.Parallel),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sweepSheet, cell, &row); err != nil {
			f.Close()
			return nil, exportError(err, "")
		}
	}
	return f, nil
}

// WriteTSV writes the sweep rows as tab-separated text with a header line
func WriteTSV(w io.Writer, t *Table) error {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'

	if err := tw.Write(Columns); err != nil {
		return exportError(err, "")
	}
	for _, p := range t.Points {
		row := []string{
			strconv.Itoa(p.Index + 1),
			cellText(p.Frequency),
			cellText(p.Omega),
			cellText(p.InductiveReactance),
			cellText(p.CapacitiveReactance),
			cellText(p.Series),
			cellText(p.Parallel),
		}
		if err := tw.Write(row); err != nil {
			return exportError(err, "")
		}
	}
	tw.Flush()
	return exportError(tw.Error(), "")
}

// cellText rounds to the displayed significant digits without the
// approximation marker.
func cellText(d mathx.Decimal) string {
	if d.IsNaN() || d.IsInf() {
		return d.ExactString()
	}
	return d.RoundSignificant(mathx.DisplayDigits + 1).ExactString()
}

// cellValue is a float for spreadsheet arithmetic, or text when the value
// does not fit a float64.
func cellValue(d mathx.Decimal) interface{} {
	f := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return cellText(d)
	}
	return f
}

func exportError(err error, path string) error {
	if err == nil {
		return nil
	}
	wrapped := mdwerror.Wrap(err, "export failed").
		WithCode(mdwerror.CodeExportFailed).
		WithOperation("sweep.export")
	if path != "" {
		wrapped = wrapped.WithDetail("path", path)
	}
	return wrapped
}

package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

// Sheet names of the workbook produced by WriteDashboardXLSX.
const (
	SheetSummary = "Summary"
	SheetYears   = "Years"
	SheetZones   = "Zones"
	SheetMonthly = "Monthly"
)

// amountFormat is the built-in "#,##0.00" number format.
const amountFormat = 4

// FormatAmount renders v with the grouping conventions of tag.
func FormatAmount(tag language.Tag, v float64) string {
	return message.NewPrinter(tag).Sprintf("%.2f", v)
}

type workbook struct {
	file   *excelize.File
	header int
	amount int
}

// WriteDashboardXLSX writes a workbook with the KPI summary, yearly totals, zone rows and
// monthly trend of d. Amount cells stay numeric; the summary adds a display column
// formatted for tag.
func WriteDashboardXLSX(w io.Writer, d finance.Dashboard, tag language.Tag) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return fmt.Errorf("export: amount style: %w", err)
	}
	wb := workbook{file: f, header: header, amount: amount}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	for _, name := range []string{SheetYears, SheetZones, SheetMonthly} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: create sheet %s: %w", name, err)
		}
	}

	summary := [][]interface{}{
		{"Year", d.Year, fmt.Sprint(d.Year)},
		{"Revenue", d.Totals.Revenue, FormatAmount(tag, d.Totals.Revenue)},
		{"Cost", d.Totals.Cost, FormatAmount(tag, d.Totals.Cost)},
		{"Profit", d.Totals.Profit, FormatAmount(tag, d.Totals.Profit)},
		{"Profit Margin %", d.Totals.ProfitMargin, d.Totals.ProfitMargin},
		{"Zones", d.UniqueZones, fmt.Sprint(d.UniqueZones)},
		{"Branches", d.BranchCount, fmt.Sprint(d.BranchCount)},
	}
	if err := wb.table(SheetSummary, []interface{}{"Metric", "Value", "Display"}, summary, 0, 0); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "B3", "B5", amount); err != nil {
		return fmt.Errorf("export: summary amount style: %w", err)
	}

	years := make([][]interface{}, 0, len(d.Years))
	for _, year := range d.Years {
		totals := finance.CalculateTotalsForYear(d.YearWise, year)
		years = append(years, []interface{}{year, totals.Revenue, totals.Cost, totals.Profit, totals.ProfitMargin})
	}
	if err := wb.table(SheetYears, []interface{}{"Year", "Income", "Expense", "Profit", "Profit Margin %"}, years, 2, 4); err != nil {
		return err
	}

	zones := make([][]interface{}, 0, len(d.ZoneSummary))
	for _, row := range d.ZoneSummary {
		zones = append(zones, []interface{}{row.ZoneName, row.TotalIncome, row.TotalExpense, row.TotalProfit})
	}
	if err := wb.table(SheetZones, []interface{}{"Zone", "Income", "Expense", "Profit"}, zones, 2, 4); err != nil {
		return err
	}

	months := make([][]interface{}, 0, finance.MonthsPerYear)
	for i, label := range d.Trend.Labels {
		months = append(months, []interface{}{label, d.Trend.Income[i], d.Trend.Expense[i], d.Trend.Profit[i]})
	}
	if err := wb.table(SheetMonthly, []interface{}{"Month", "Income", "Expense", "Profit"}, months, 2, 4); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// table writes a header row and data rows starting at A1. Columns firstAmount..lastAmount
// (1-based) get the amount number format; zero skips it.
func (wb workbook) table(sheet string, header []interface{}, rows [][]interface{}, firstAmount, lastAmount int) error {
	if err := wb.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: %s header: %w", sheet, err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := wb.file.SetCellStyle(sheet, "A1", lastHeader, wb.header); err != nil {
		return fmt.Errorf("export: %s header style: %w", sheet, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.file.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("export: %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 && firstAmount > 0 {
		from, _ := excelize.CoordinatesToCellName(firstAmount, 2)
		to, _ := excelize.CoordinatesToCellName(lastAmount, len(rows)+1)
		if err := wb.file.SetCellStyle(sheet, from, to, wb.amount); err != nil {
			return fmt.Errorf("export: %s amount style: %w", sheet, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return wb.file.SetColWidth(sheet, "A", lastCol, 18)
}

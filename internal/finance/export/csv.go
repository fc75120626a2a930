package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

// WriteYearlyCSV emits one row per year, most recent first.
func WriteYearlyCSV(w io.Writer, yearWise finance.YearWise) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Year", "Income", "Expense", "Profit", "Profit Margin %"}); err != nil {
		return err
	}
	for _, year := range yearWise.Years {
		totals := finance.CalculateTotalsForYear(yearWise, year)
		if err := writer.Write([]string{
			strconv.Itoa(year),
			formatFloat(totals.Revenue),
			formatFloat(totals.Cost),
			formatFloat(totals.Profit),
			totals.ProfitMargin,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDashboardCSV prints the selected year as a long table: the year totals, one row
// per zone and one row per month.
func WriteDashboardCSV(w io.Writer, d finance.Dashboard) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Scope", "Label", "Income", "Expense", "Profit"}); err != nil {
		return err
	}
	year := strconv.Itoa(d.Year)
	records := [][]string{
		{"year", year, formatFloat(d.Totals.Revenue), formatFloat(d.Totals.Cost), formatFloat(d.Totals.Profit)},
	}
	for _, row := range d.ZoneSummary {
		records = append(records, []string{"zone", row.ZoneName, formatFloat(row.TotalIncome), formatFloat(row.TotalExpense), formatFloat(row.TotalProfit)})
	}
	for i, label := range d.Trend.Labels {
		records = append(records, []string{"month", label, formatFloat(d.Trend.Income[i]), formatFloat(d.Trend.Expense[i]), formatFloat(d.Trend.Profit[i])})
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

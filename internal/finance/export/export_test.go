package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

func sampleDashboard(t *testing.T) finance.Dashboard {
	t.Helper()
	zone := "HILL PARK"
	feed := finance.Feed{
		Branches: []finance.Branch{{BranchID: 1, Name: "Hill Park Primary", Zone: "HP", ZoneName: &zone}},
		Finance: []finance.FinanceBranch{{
			BranchID:       1,
			MonthlyRevenue: []finance.YearBucket{{Year: 2024, Records: []finance.MonthRecord{{Month: 1, Total: 1000}, {Month: 2, Total: 1500}}}},
			MonthlyCost:    []finance.YearBucket{{Year: 2024, Records: []finance.MonthRecord{{Month: 1, Total: 400}}}, {Year: 2023, Records: []finance.MonthRecord{{Month: 12, Total: 50}}}},
			MonthlyProfit:  []finance.YearBucket{{Year: 2024, Records: []finance.MonthRecord{{Month: 1, Total: 600}, {Month: 2, Total: 1500}}}},
		}},
	}
	d, err := finance.BuildDashboard(feed, finance.DashboardFilter{}, 2025)
	require.NoError(t, err)
	return d
}

func TestWriteYearlyCSV(t *testing.T) {
	d := sampleDashboard(t)
	buf := &bytes.Buffer{}
	require.NoError(t, WriteYearlyCSV(buf, d.YearWise))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Year", "Income", "Expense", "Profit", "Profit Margin %"},
		{"2024", "2500.00", "400.00", "2100.00", "84.00"},
		{"2023", "0.00", "50.00", "0.00", "0.00"},
	}, records)
}

func TestWriteDashboardCSV(t *testing.T) {
	d := sampleDashboard(t)
	buf := &bytes.Buffer{}
	require.NoError(t, WriteDashboardCSV(buf, d))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+1+1+finance.MonthsPerYear)
	assert.Equal(t, []string{"year", "2024", "2500.00", "400.00", "2100.00"}, records[1])
	assert.Equal(t, []string{"zone", "HILL PARK", "2500.00", "400.00", "2100.00"}, records[2])
	assert.Equal(t, []string{"month", "Feb", "1500.00", "0.00", "1500.00"}, records[4])
}

func TestWriteDashboardXLSX(t *testing.T) {
	d := sampleDashboard(t)
	buf := &bytes.Buffer{}
	require.NoError(t, WriteDashboardXLSX(buf, d, language.English))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetYears, SheetZones, SheetMonthly}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	revenue, err := f.GetCellValue(SheetSummary, "B3", raw)
	require.NoError(t, err)
	assert.Equal(t, "2500", revenue)
	display, err := f.GetCellValue(SheetSummary, "C3")
	require.NoError(t, err)
	assert.Equal(t, "2,500.00", display)

	year, err := f.GetCellValue(SheetYears, "A3", raw)
	require.NoError(t, err)
	assert.Equal(t, "2023", year)

	zone, err := f.GetCellValue(SheetZones, "A2")
	require.NoError(t, err)
	assert.Equal(t, "HILL PARK", zone)

	rows, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	assert.Len(t, rows, 1+finance.MonthsPerYear)
}

func TestWriteDashboardXLSXEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteDashboardXLSX(buf, finance.EmptyDashboard(2025), language.English))
	assert.NotZero(t, buf.Len())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "761,500.00", FormatAmount(language.English, 761500))
	assert.Equal(t, "761.500,00", FormatAmount(language.German, 761500))
}

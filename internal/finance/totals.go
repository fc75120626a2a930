package finance

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculateTotalsForYear resolves the KPI card values for year. ProfitMargin is the
// percentage of profit over revenue with two decimals, and "0.00" whenever revenue is not
// positive so the card never shows an infinite or NaN margin.
func CalculateTotalsForYear(yearWise YearWise, year int) YearTotals {
	totals := yearWise.Totals[year]
	return YearTotals{
		Revenue:      totals.TotalIncome,
		Cost:         totals.TotalExpense,
		Profit:       totals.TotalProfit,
		ProfitMargin: ProfitMargin(totals.TotalIncome, totals.TotalProfit),
	}
}

// ProfitMargin formats profit/revenue*100 rounded half away from zero to two decimals.
func ProfitMargin(revenue, profit float64) string {
	if revenue <= 0 {
		return "0.00"
	}
	ratio := decimal.NewFromFloat(profit).Mul(hundred).Div(decimal.NewFromFloat(revenue))
	return ratio.StringFixed(2)
}

package finance

import (
	"math"
	"sort"
)

const (
	seriesRevenue = "monthly_revenue"
	seriesCost    = "monthly_cost"
	seriesProfit  = "monthly_profit"
)

type metric int

const (
	metricIncome metric = iota
	metricExpense
	metricProfit
)

type namedSeries struct {
	name    string
	metric  metric
	buckets []YearBucket
}

func seriesOf(fb FinanceBranch) [3]namedSeries {
	return [3]namedSeries{
		{name: seriesRevenue, metric: metricIncome, buckets: fb.MonthlyRevenue},
		{name: seriesCost, metric: metricExpense, buckets: fb.MonthlyCost},
		{name: seriesProfit, metric: metricProfit, buckets: fb.MonthlyProfit},
	}
}

// ComputeYearWiseTotals totals revenue, cost and profit per year across all branches.
// Absent series and buckets contribute nothing. A month outside 1-12 or a non-finite
// total fails the whole computation with a MalformedInputError.
func ComputeYearWiseTotals(branches []FinanceBranch) (YearWise, error) {
	if err := validateBranches(branches); err != nil {
		return YearWise{}, err
	}
	years := collectYears(branches)
	totals := make(map[int]YearWiseTotals, len(years))
	for _, year := range years {
		totals[year] = YearWiseTotals{}
	}
	for _, fb := range branches {
		for _, series := range seriesOf(fb) {
			for _, bucket := range series.buckets {
				entry := totals[bucket.Year]
				for _, record := range bucket.Records {
					entry.add(series.metric, record)
				}
				totals[bucket.Year] = entry
			}
		}
	}
	return YearWise{Years: years, Totals: totals}, nil
}

func (t *YearWiseTotals) add(m metric, record MonthRecord) {
	idx := record.Month - 1
	switch m {
	case metricIncome:
		t.MonthlyIncome[idx] += record.Total
		t.TotalIncome += record.Total
	case metricExpense:
		t.MonthlyExpense[idx] += record.Total
		t.TotalExpense += record.Total
	case metricProfit:
		t.MonthlyProfit[idx] += record.Total
		t.TotalProfit += record.Total
	}
}

// collectYears returns the union of every bucket year, most recent first.
func collectYears(branches []FinanceBranch) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, fb := range branches {
		for _, series := range seriesOf(fb) {
			for _, bucket := range series.buckets {
				if _, ok := seen[bucket.Year]; ok {
					continue
				}
				seen[bucket.Year] = struct{}{}
				years = append(years, bucket.Year)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func validateBranches(branches []FinanceBranch) error {
	for _, fb := range branches {
		for _, series := range seriesOf(fb) {
			for _, bucket := range series.buckets {
				for _, record := range bucket.Records {
					if record.Month < 1 || record.Month > MonthsPerYear {
						return &MalformedInputError{BranchID: fb.BranchID, Series: series.name, Year: bucket.Year, Month: record.Month, Reason: "month out of range"}
					}
					if math.IsNaN(record.Total) || math.IsInf(record.Total, 0) {
						return &MalformedInputError{BranchID: fb.BranchID, Series: series.name, Year: bucket.Year, Month: record.Month, Reason: "total is not finite"}
					}
				}
			}
		}
	}
	return nil
}

// MonthlyTrend holds the twelve-month series of one year, January first.
type MonthlyTrend struct {
	Year    int                     `json:"year"`
	Labels  [MonthsPerYear]string  `json:"labels"`
	Income  [MonthsPerYear]float64 `json:"income"`
	Expense [MonthsPerYear]float64 `json:"expense"`
	Profit  [MonthsPerYear]float64 `json:"profit"`
}

var monthLabels = [MonthsPerYear]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthlySeries extracts the monthly trend for year. Unknown years yield zeros.
func MonthlySeries(yearWise YearWise, year int) MonthlyTrend {
	totals := yearWise.Totals[year]
	return MonthlyTrend{
		Year:    year,
		Labels:  monthLabels,
		Income:  totals.MonthlyIncome,
		Expense: totals.MonthlyExpense,
		Profit:  totals.MonthlyProfit,
	}
}

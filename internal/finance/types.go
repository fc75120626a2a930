package finance

import "strings"

// UnknownZone labels finance branches that cannot be attributed to a zone.
const UnknownZone = "Unknown Zone"

// MonthsPerYear is the fixed length of every monthly series.
const MonthsPerYear = 12

// Branch is a system-info record describing a school site.
type Branch struct {
	BranchID int64   `json:"branchId"`
	Name     string  `json:"name"`
	Zone     string  `json:"zone"`
	ZoneName *string `json:"zoneName,omitempty"`
}

// DisplayZone returns the label used for zone attribution and whether the branch has a zone.
// A blank Zone means the branch is unzoned, even when ZoneName carries a value. Labels are
// returned verbatim; trimming only decides blankness.
func (b Branch) DisplayZone() (string, bool) {
	if strings.TrimSpace(b.Zone) == "" {
		return "", false
	}
	if b.ZoneName != nil && strings.TrimSpace(*b.ZoneName) != "" {
		return *b.ZoneName, true
	}
	return b.Zone, true
}

// MonthRecord is a single monthly total. Month is 1-based.
type MonthRecord struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

// YearBucket groups the monthly records of one year.
type YearBucket struct {
	Year    int           `json:"year"`
	Records []MonthRecord `json:"records"`
}

// FinanceBranch carries the three independent financial series of a branch.
type FinanceBranch struct {
	BranchID       int64        `json:"branchId"`
	Name           string       `json:"name"`
	MonthlyRevenue []YearBucket `json:"monthlyRevenue,omitempty"`
	MonthlyCost    []YearBucket `json:"monthlyCost,omitempty"`
	MonthlyProfit  []YearBucket `json:"monthlyProfit,omitempty"`
}

// YearWiseTotals aggregates every branch for a single year.
type YearWiseTotals struct {
	TotalIncome    float64                 `json:"totalIncome"`
	TotalExpense   float64                 `json:"totalExpense"`
	TotalProfit    float64                 `json:"totalProfit"`
	MonthlyIncome  [MonthsPerYear]float64 `json:"monthlyIncome"`
	MonthlyExpense [MonthsPerYear]float64 `json:"monthlyExpense"`
	MonthlyProfit  [MonthsPerYear]float64 `json:"monthlyProfit"`
}

// YearWise is the result of ComputeYearWiseTotals.
type YearWise struct {
	// Years is sorted most recent first.
	Years  []int                  `json:"years"`
	Totals map[int]YearWiseTotals `json:"totals"`
}

// ZoneWiseTotals aggregates the branches of one zone for one year.
type ZoneWiseTotals struct {
	TotalIncome  float64  `json:"totalIncome"`
	TotalExpense float64  `json:"totalExpense"`
	TotalProfit  float64  `json:"totalProfit"`
	Branches     []string `json:"branches"`
}

// ZoneWise is the result of ComputeZoneWiseTotals.
type ZoneWise struct {
	// Zones lists zone names in the order they were first seen.
	Zones  []string                          `json:"zones"`
	Totals map[string]map[int]ZoneWiseTotals `json:"totals"`
}

// ZoneFinancialSummary is one row of the per-year zone comparison.
type ZoneFinancialSummary struct {
	ZoneName     string  `json:"zoneName"`
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	TotalProfit  float64 `json:"totalProfit"`
}

// YearTotals backs the headline KPI cards for a selected year.
type YearTotals struct {
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
	ProfitMargin string  `json:"profitMargin"`
}

// ZoneRowPolicy decides which zones are listed in a per-year summary.
type ZoneRowPolicy int

const (
	// ZoneRowsAll lists every zone a finance branch maps to, with zero totals when idle.
	ZoneRowsAll ZoneRowPolicy = iota
	// ZoneRowsActive omits zones that have no record for the selected year.
	ZoneRowsActive
)

// ParseZoneRowPolicy maps the textual policy used by config and query strings.
func ParseZoneRowPolicy(value string) (ZoneRowPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return ZoneRowsAll, true
	case "active":
		return ZoneRowsActive, true
	default:
		return ZoneRowsAll, false
	}
}

func (p ZoneRowPolicy) String() string {
	if p == ZoneRowsActive {
		return "active"
	}
	return "all"
}

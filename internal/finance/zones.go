package finance

import (
	"strconv"
	"strings"
)

// ComputeZoneWiseTotals partitions the yearly totals by zone. Finance branches without a
// zoned system-info record are attributed to UnknownZone. Every zone receives a bucket for
// every year present in the feed, even when its branches have no record for that year.
func ComputeZoneWiseTotals(finance []FinanceBranch, branches []Branch) (ZoneWise, error) {
	if err := validateBranches(finance); err != nil {
		return ZoneWise{}, err
	}
	years := collectYears(finance)
	zones := branchZoneMap(branches)
	names := branchNameMap(branches)

	result := ZoneWise{
		Zones:  make([]string, 0),
		Totals: make(map[string]map[int]ZoneWiseTotals),
	}
	for _, fb := range finance {
		zone := resolveZone(zones, fb.BranchID)
		byYear, ok := result.Totals[zone]
		if !ok {
			byYear = make(map[int]ZoneWiseTotals, len(years))
			result.Totals[zone] = byYear
			result.Zones = append(result.Zones, zone)
		}
		name := displayName(fb, names)
		for _, year := range years {
			entry := byYear[year]
			entry.TotalIncome += sumYear(fb.MonthlyRevenue, year)
			entry.TotalExpense += sumYear(fb.MonthlyCost, year)
			entry.TotalProfit += sumYear(fb.MonthlyProfit, year)
			entry.Branches = appendUnique(entry.Branches, name)
			byYear[year] = entry
		}
	}
	return result, nil
}

// ComputeZoneFinancialSummary lists one row per zone for year, in first-seen zone order.
// With ZoneRowsAll every zone mapped by a finance branch is listed, idle ones with zero
// totals. With ZoneRowsActive zones without any record in year are omitted.
func ComputeZoneFinancialSummary(finance []FinanceBranch, branches []Branch, year int, policy ZoneRowPolicy) ([]ZoneFinancialSummary, error) {
	zoneWise, err := ComputeZoneWiseTotals(finance, branches)
	if err != nil {
		return nil, err
	}
	return summarizeZones(zoneWise, activeZones(finance, branches, year), year, policy), nil
}

func summarizeZones(zoneWise ZoneWise, active map[string]bool, year int, policy ZoneRowPolicy) []ZoneFinancialSummary {
	rows := make([]ZoneFinancialSummary, 0, len(zoneWise.Zones))
	for _, zone := range zoneWise.Zones {
		totals, ok := zoneWise.Totals[zone][year]
		if !ok {
			continue
		}
		if policy == ZoneRowsActive && !active[zone] {
			continue
		}
		rows = append(rows, ZoneFinancialSummary{
			ZoneName:     zone,
			TotalIncome:  totals.TotalIncome,
			TotalExpense: totals.TotalExpense,
			TotalProfit:  totals.TotalProfit,
		})
	}
	return rows
}

// CountUniqueZones counts distinct non-blank zone codes. Matching is exact, so zones that
// differ only by case or surrounding whitespace are counted separately.
func CountUniqueZones(branches []Branch) int {
	seen := make(map[string]struct{})
	for _, b := range branches {
		if strings.TrimSpace(b.Zone) == "" {
			continue
		}
		seen[b.Zone] = struct{}{}
	}
	return len(seen)
}

// ZoneComparison holds index-aligned chart series.
type ZoneComparison struct {
	Categories []string  `json:"categories"`
	Income     []float64 `json:"income"`
	Expense    []float64 `json:"expense"`
	Profit     []float64 `json:"profit"`
}

// ZoneComparisonChart splits summary rows into parallel arrays. Index i of every slice
// describes rows[i].
func ZoneComparisonChart(rows []ZoneFinancialSummary) ZoneComparison {
	chart := ZoneComparison{
		Categories: make([]string, len(rows)),
		Income:     make([]float64, len(rows)),
		Expense:    make([]float64, len(rows)),
		Profit:     make([]float64, len(rows)),
	}
	for i, row := range rows {
		chart.Categories[i] = row.ZoneName
		chart.Income[i] = row.TotalIncome
		chart.Expense[i] = row.TotalExpense
		chart.Profit[i] = row.TotalProfit
	}
	return chart
}

func branchZoneMap(branches []Branch) map[int64]string {
	zones := make(map[int64]string, len(branches))
	for _, b := range branches {
		zone, ok := b.DisplayZone()
		if !ok {
			continue
		}
		zones[b.BranchID] = zone
	}
	return zones
}

func branchNameMap(branches []Branch) map[int64]string {
	names := make(map[int64]string, len(branches))
	for _, b := range branches {
		if name := strings.TrimSpace(b.Name); name != "" {
			names[b.BranchID] = name
		}
	}
	return names
}

func resolveZone(zones map[int64]string, branchID int64) string {
	if zone, ok := zones[branchID]; ok {
		return zone
	}
	return UnknownZone
}

// displayName prefers the finance feed name, then the system-info name.
func displayName(fb FinanceBranch, names map[int64]string) string {
	if name := strings.TrimSpace(fb.Name); name != "" {
		return name
	}
	if name, ok := names[fb.BranchID]; ok {
		return name
	}
	return "Branch " + strconv.FormatInt(fb.BranchID, 10)
}

func activeZones(finance []FinanceBranch, branches []Branch, year int) map[string]bool {
	zones := branchZoneMap(branches)
	active := make(map[string]bool)
	for _, fb := range finance {
		if hasRecords(fb, year) {
			active[resolveZone(zones, fb.BranchID)] = true
		}
	}
	return active
}

func hasRecords(fb FinanceBranch, year int) bool {
	for _, series := range seriesOf(fb) {
		for _, bucket := range series.buckets {
			if bucket.Year == year && len(bucket.Records) > 0 {
				return true
			}
		}
	}
	return false
}

func sumYear(buckets []YearBucket, year int) float64 {
	total := 0.0
	for _, bucket := range buckets {
		if bucket.Year != year {
			continue
		}
		for _, record := range bucket.Records {
			total += record.Total
		}
	}
	return total
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

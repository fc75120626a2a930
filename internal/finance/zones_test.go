package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }

func TestComputeZoneWiseTotalsHillPark(t *testing.T) {
	feed := hillParkFeed()
	got, err := ComputeZoneWiseTotals(feed.Finance, feed.Branches)
	require.NoError(t, err)

	assert.Equal(t, []string{"HILL PARK"}, got.Zones)
	bucket := got.Totals["HILL PARK"][2024]
	assert.Equal(t, 350.0, bucket.TotalIncome)
	assert.Equal(t, []string{"B1", "B2"}, bucket.Branches)
}

func TestUnmatchedBranchGoesToUnknownZone(t *testing.T) {
	finance := []FinanceBranch{{
		BranchID:       77,
		Name:           "Orphan",
		MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 120, 2, 80)}},
		MonthlyCost:    []YearBucket{{Year: 2024, Records: records(1, 50)}},
		MonthlyProfit:  []YearBucket{{Year: 2024, Records: records(1, 70, 2, 80)}},
	}}
	got, err := ComputeZoneWiseTotals(finance, []Branch{{BranchID: 1, Name: "Other", Zone: "NORTH"}})
	require.NoError(t, err)

	assert.Equal(t, []string{UnknownZone}, got.Zones)
	assert.Equal(t, ZoneWiseTotals{
		TotalIncome:  200,
		TotalExpense: 50,
		TotalProfit:  150,
		Branches:     []string{"Orphan"},
	}, got.Totals[UnknownZone][2024])
}

func TestBlankZoneExcludedFromCountAndAttributedToUnknown(t *testing.T) {
	branches := []Branch{
		{BranchID: 1, Name: "Blank", Zone: "   ", ZoneName: strPtr("Ignored")},
		{BranchID: 2, Name: "North", Zone: "NORTH"},
	}
	finance := []FinanceBranch{
		{BranchID: 1, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 10)}}},
		{BranchID: 2, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 20)}}},
	}

	assert.Equal(t, 1, CountUniqueZones(branches))

	got, err := ComputeZoneWiseTotals(finance, branches)
	require.NoError(t, err)
	assert.Equal(t, []string{UnknownZone, "NORTH"}, got.Zones)
	assert.Equal(t, 10.0, got.Totals[UnknownZone][2024].TotalIncome)
	assert.Equal(t, []string{"Blank"}, got.Totals[UnknownZone][2024].Branches)
}

func TestZoneNameFallsBackToZone(t *testing.T) {
	branches := []Branch{
		{BranchID: 1, Zone: "HP", ZoneName: strPtr("Hill Park")},
		{BranchID: 2, Zone: "HP", ZoneName: strPtr("  ")},
		{BranchID: 3, Zone: "LK"},
	}
	finance := []FinanceBranch{
		{BranchID: 1, Name: "A", MonthlyCost: []YearBucket{{Year: 2023, Records: records(1, 1)}}},
		{BranchID: 2, Name: "B", MonthlyCost: []YearBucket{{Year: 2023, Records: records(1, 2)}}},
		{BranchID: 3, Name: "C", MonthlyCost: []YearBucket{{Year: 2023, Records: records(1, 3)}}},
	}
	got, err := ComputeZoneWiseTotals(finance, branches)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hill Park", "HP", "LK"}, got.Zones)
}

func TestZoneBranchesAreDeduplicatedInOrder(t *testing.T) {
	branches := []Branch{{BranchID: 1, Name: "Alpha", Zone: "Z"}, {BranchID: 2, Name: "Beta", Zone: "Z"}}
	finance := []FinanceBranch{
		{BranchID: 2, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 1)}}},
		{BranchID: 1, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 1)}}},
		{BranchID: 2, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(2, 1)}}},
	}
	got, err := ComputeZoneWiseTotals(finance, branches)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Alpha"}, got.Totals["Z"][2024].Branches)
	assert.Equal(t, 3.0, got.Totals["Z"][2024].TotalIncome)
}

func TestEveryZoneHasEveryYear(t *testing.T) {
	branches := []Branch{{BranchID: 1, Zone: "A"}, {BranchID: 2, Zone: "B"}}
	finance := []FinanceBranch{
		{BranchID: 1, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 5)}}},
		{BranchID: 2, MonthlyRevenue: []YearBucket{{Year: 2023, Records: records(1, 5)}}},
	}
	got, err := ComputeZoneWiseTotals(finance, branches)
	require.NoError(t, err)
	for _, zone := range got.Zones {
		assert.Len(t, got.Totals[zone], 2, zone)
	}
	assert.Zero(t, got.Totals["A"][2023].TotalIncome)
}

func TestCountUniqueZonesIsCaseSensitive(t *testing.T) {
	branches := []Branch{
		{BranchID: 1, Zone: "North"},
		{BranchID: 2, Zone: "north"},
		{BranchID: 3, Zone: "North "},
		{BranchID: 4, Zone: ""},
		{BranchID: 5, Zone: "  "},
	}
	assert.Equal(t, 3, CountUniqueZones(branches))
	assert.Zero(t, CountUniqueZones(nil))
}

func TestZonesDifferingByWhitespaceStaySeparate(t *testing.T) {
	branches := []Branch{
		{BranchID: 1, Name: "Upper", Zone: "HILL PARK"},
		{BranchID: 2, Name: "Lower", Zone: "HILL PARK "},
	}
	finance := []FinanceBranch{
		{BranchID: 1, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 100)}}},
		{BranchID: 2, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 40)}}},
	}

	assert.Equal(t, 2, CountUniqueZones(branches))

	got, err := ComputeZoneWiseTotals(finance, branches)
	require.NoError(t, err)
	assert.Equal(t, []string{"HILL PARK", "HILL PARK "}, got.Zones)
	assert.Equal(t, 100.0, got.Totals["HILL PARK"][2024].TotalIncome)
	assert.Equal(t, 40.0, got.Totals["HILL PARK "][2024].TotalIncome)
}

func TestZoneNameIsUsedVerbatim(t *testing.T) {
	zone, ok := Branch{Zone: "HP", ZoneName: strPtr(" Hill Park")}.DisplayZone()
	assert.True(t, ok)
	assert.Equal(t, " Hill Park", zone)

	zone, ok = Branch{Zone: " HP"}.DisplayZone()
	assert.True(t, ok)
	assert.Equal(t, " HP", zone)
}

func zonePolicyFeed() Feed {
	return Feed{
		Branches: []Branch{
			{BranchID: 1, Name: "East One", Zone: "EAST"},
			{BranchID: 2, Name: "West One", Zone: "WEST"},
			{BranchID: 3, Name: "South One", Zone: "SOUTH"},
		},
		Finance: []FinanceBranch{
			{BranchID: 2, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 300)}}, MonthlyProfit: []YearBucket{{Year: 2024, Records: records(1, 30)}}},
			{BranchID: 1, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(1, 100)}}, MonthlyCost: []YearBucket{{Year: 2024, Records: records(1, 60)}}},
			{BranchID: 3, MonthlyRevenue: []YearBucket{{Year: 2023, Records: records(1, 999)}}},
		},
	}
}

func TestComputeZoneFinancialSummaryAllPolicy(t *testing.T) {
	feed := zonePolicyFeed()
	rows, err := ComputeZoneFinancialSummary(feed.Finance, feed.Branches, 2024, ZoneRowsAll)
	require.NoError(t, err)

	assert.Equal(t, []ZoneFinancialSummary{
		{ZoneName: "WEST", TotalIncome: 300, TotalProfit: 30},
		{ZoneName: "EAST", TotalIncome: 100, TotalExpense: 60},
		{ZoneName: "SOUTH"},
	}, rows)
}

func TestComputeZoneFinancialSummaryActivePolicy(t *testing.T) {
	feed := zonePolicyFeed()
	rows, err := ComputeZoneFinancialSummary(feed.Finance, feed.Branches, 2024, ZoneRowsActive)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "WEST", rows[0].ZoneName)
	assert.Equal(t, "EAST", rows[1].ZoneName)
}

func TestComputeZoneFinancialSummaryUnknownYear(t *testing.T) {
	feed := zonePolicyFeed()
	rows, err := ComputeZoneFinancialSummary(feed.Finance, feed.Branches, 1990, ZoneRowsAll)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestComputeZoneFinancialSummaryStableOrder(t *testing.T) {
	feed := zonePolicyFeed()
	first, err := ComputeZoneFinancialSummary(feed.Finance, feed.Branches, 2024, ZoneRowsAll)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := ComputeZoneFinancialSummary(feed.Finance, feed.Branches, 2024, ZoneRowsAll)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestZoneComparisonChartIndexAlignment(t *testing.T) {
	feed := zonePolicyFeed()
	rows, err := ComputeZoneFinancialSummary(feed.Finance, feed.Branches, 2024, ZoneRowsAll)
	require.NoError(t, err)

	chart := ZoneComparisonChart(rows)
	require.Len(t, chart.Categories, len(rows))
	require.Len(t, chart.Income, len(rows))
	require.Len(t, chart.Expense, len(rows))
	require.Len(t, chart.Profit, len(rows))
	for i, row := range rows {
		assert.Equal(t, row.ZoneName, chart.Categories[i])
		assert.Equal(t, row.TotalIncome, chart.Income[i])
		assert.Equal(t, row.TotalExpense, chart.Expense[i])
		assert.Equal(t, row.TotalProfit, chart.Profit[i])
	}
}

func TestZoneWiseRejectsMalformedMonth(t *testing.T) {
	finance := []FinanceBranch{{BranchID: 1, MonthlyRevenue: []YearBucket{{Year: 2024, Records: records(13, 1)}}}}
	_, err := ComputeZoneWiseTotals(finance, nil)
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = ComputeZoneFinancialSummary(finance, nil, 2024, ZoneRowsAll)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestDisplayNameFallbacks(t *testing.T) {
	names := map[int64]string{2: "System Name"}
	assert.Equal(t, "Feed Name", displayName(FinanceBranch{BranchID: 2, Name: "Feed Name"}, names))
	assert.Equal(t, "System Name", displayName(FinanceBranch{BranchID: 2}, names))
	assert.Equal(t, "Branch 3", displayName(FinanceBranch{BranchID: 3}, names))
}

func TestParseZoneRowPolicy(t *testing.T) {
	policy, ok := ParseZoneRowPolicy("Active")
	assert.True(t, ok)
	assert.Equal(t, ZoneRowsActive, policy)

	policy, ok = ParseZoneRowPolicy("")
	assert.True(t, ok)
	assert.Equal(t, ZoneRowsAll, policy)

	_, ok = ParseZoneRowPolicy("some")
	assert.False(t, ok)
}

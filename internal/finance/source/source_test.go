package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls map[string]error
}

func (o *recordingObserver) ObserveFetch(endpoint string, started time.Time, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = make(map[string]error)
	}
	o.calls[endpoint] = err
}

func fixtureServer(t *testing.T, overrides map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := overrides[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
			return
		}
		payload, err := Fixture(r.URL.Path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSourceFetchesBothEndpoints(t *testing.T) {
	srv := fixtureServer(t, nil)
	observer := &recordingObserver{}
	src := &HTTPSource{BaseURL: srv.URL + "/", Observer: observer}

	feed, err := src.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, feed.Branches, 6)
	require.Len(t, feed.Finance, 5)
	assert.Equal(t, "HILL PARK", *feed.Branches[0].ZoneName)
	assert.Nil(t, feed.Branches[2].ZoneName)
	assert.Equal(t, []finance.MonthRecord{{Month: 12, Total: 18000}}, feed.Finance[3].MonthlyCost[0].Records)
	assert.Nil(t, feed.Finance[3].MonthlyRevenue)

	assert.Contains(t, observer.calls, SystemsPath)
	assert.Contains(t, observer.calls, FinancePath)
	assert.NoError(t, observer.calls[FinancePath])
}

func TestHTTPSourceFailsWhenOneEndpointFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == FinancePath {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		payload, _ := Fixture(SystemsPath)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	_, err := (&HTTPSource{BaseURL: srv.URL}).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestHTTPSourceRejectsMalformedRecords(t *testing.T) {
	srv := fixtureServer(t, map[string]string{
		FinancePath: `[{"branchId": 1, "monthly_revenue": [{"year": 2024, "records": {"month": 1}}]}]`,
	})
	_, err := (&HTTPSource{BaseURL: srv.URL}).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrMalformedFeed)
}

func TestHTTPSourceRequiresBaseURL(t *testing.T) {
	_, err := (&HTTPSource{}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPSourceHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := (&HTTPSource{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDecodeFinanceValidation(t *testing.T) {
	cases := map[string]string{
		"month too high":  `[{"branchId": 1, "monthly_cost": [{"year": 2024, "records": [{"month": 13, "total": 1}]}]}]`,
		"month missing":   `[{"branchId": 1, "monthly_cost": [{"year": 2024, "records": [{"total": 1}]}]}]`,
		"total missing":   `[{"branchId": 1, "monthly_cost": [{"year": 2024, "records": [{"month": 2}]}]}]`,
		"branch missing":  `[{"name": "x"}]`,
		"year missing":    `[{"branchId": 1, "monthly_profit": [{"records": []}]}]`,
		"not a list":      `{"data": {"branchId": 1}}`,
		"empty":           `  `,
		"total as string": `[{"branchId": 1, "monthly_cost": [{"year": 2024, "records": [{"month": 2, "total": "5"}]}]}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFinance([]byte(payload))
			assert.ErrorIs(t, err, ErrMalformedFeed)
		})
	}
}

func TestDecodeFinanceAcceptsMissingSeriesAndZeroTotals(t *testing.T) {
	got, err := DecodeFinance([]byte(`{"data": [{"branchId": 3, "monthly_profit": [{"year": 2022, "records": [{"month": 4, "total": 0}]}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []finance.FinanceBranch{{
		BranchID:      3,
		MonthlyProfit: []finance.YearBucket{{Year: 2022, Records: []finance.MonthRecord{{Month: 4, Total: 0}}}},
	}}, got)
}

func TestDecodeBranchesKeepsZoneNamePresence(t *testing.T) {
	got, err := DecodeBranches([]byte(`[{"branchId": 1, "zone": "A"}, {"branchId": 2, "zone": "B", "zoneName": ""}]`))
	require.NoError(t, err)
	assert.Nil(t, got[0].ZoneName)
	require.NotNil(t, got[1].ZoneName)
	assert.Equal(t, "", *got[1].ZoneName)
}

func TestZoneAliases(t *testing.T) {
	aliases, err := ParseZoneAliases([]byte("zones:\n  LK: Lakeside\n  RV: \"  \"\n"))
	require.NoError(t, err)
	assert.Equal(t, ZoneAliases{"LK": "Lakeside"}, aliases)

	blank := ""
	input := []finance.Branch{
		{BranchID: 1, Zone: "LK"},
		{BranchID: 2, Zone: "LK", ZoneName: &blank},
		{BranchID: 3, Zone: "RV"},
	}
	out := aliases.Apply(input)
	require.NotNil(t, out[0].ZoneName)
	assert.Equal(t, "Lakeside", *out[0].ZoneName)
	assert.Equal(t, "", *out[1].ZoneName)
	assert.Nil(t, out[2].ZoneName)
	assert.Nil(t, input[0].ZoneName, "input must not be modified")

	none, err := LoadZoneAliases("")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStaticSourceAggregates(t *testing.T) {
	feed, err := StaticSource{}.Fetch(context.Background())
	require.NoError(t, err)

	yearWise, err := finance.ComputeYearWiseTotals(feed.Finance)
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2023}, yearWise.Years)
	assert.Equal(t, 761500.0, yearWise.Totals[2024].TotalIncome)
	assert.Equal(t, 18000.0+76000+77000, yearWise.Totals[2023].TotalExpense)

	zoneWise, err := finance.ComputeZoneWiseTotals(feed.Finance, feed.Branches)
	require.NoError(t, err)
	assert.Equal(t, []string{"HILL PARK", "LK", "RV", finance.UnknownZone}, zoneWise.Zones)
	assert.Equal(t, []string{"Hill Park Primary", "Hill Park Senior"}, zoneWise.Totals["HILL PARK"][2024].Branches)
	assert.Equal(t, 3, finance.CountUniqueZones(feed.Branches))
}

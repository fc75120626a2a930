package finance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

const feedCacheKey = "finance:feed"

// Feed is the raw data pair delivered by the upstream dashboard feed.
type Feed struct {
	Branches []Branch        `json:"branches"`
	Finance  []FinanceBranch `json:"finance"`
}

// Source retrieves the raw feed.
type Source interface {
	Fetch(ctx context.Context) (Feed, error)
}

// DashboardFilter scopes a dashboard computation.
type DashboardFilter struct {
	// Year selects the KPI/zone year; nil picks the most recent year in the feed.
	Year   *int
	Policy ZoneRowPolicy
}

// Dashboard is the immutable snapshot handed to the presentation layer.
type Dashboard struct {
	Year        int                    `json:"year"`
	Years       []int                  `json:"years"`
	Totals      YearTotals             `json:"totals"`
	UniqueZones int                    `json:"uniqueZones"`
	BranchCount int                    `json:"branchCount"`
	YearWise    YearWise               `json:"yearWise"`
	ZoneWise    ZoneWise               `json:"zoneWise"`
	ZoneSummary []ZoneFinancialSummary `json:"zoneSummary"`
	Comparison  ZoneComparison         `json:"comparison"`
	Trend       MonthlyTrend           `json:"trend"`
	Degraded    bool                   `json:"degraded"`
}

// Service loads the feed through the cache and runs the aggregations.
type Service struct {
	source Source
	cache  *Cache
	now    func() time.Time
}

// NewService wires a Source with an optional Cache.
func NewService(source Source, cache *Cache) *Service {
	return &Service{source: source, cache: cache, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Feed returns the current feed, served from cache when possible.
func (s *Service) Feed(ctx context.Context) (Feed, error) {
	if s.source == nil {
		return Feed{}, errors.New("finance: source not configured")
	}
	loader := func(ctx context.Context) (interface{}, error) {
		return s.source.Fetch(ctx)
	}
	if s.cache == nil {
		return s.source.Fetch(ctx)
	}
	key, err := s.cache.BuildKey(ctx, feedCacheKey)
	if err != nil {
		return Feed{}, fmt.Errorf("finance: build cache key: %w", err)
	}
	var feed Feed
	if err := s.cache.FetchJSON(ctx, key, &feed, loader); err != nil {
		return Feed{}, err
	}
	return feed, nil
}

// Refresh invalidates the cached feed and loads a fresh one.
func (s *Service) Refresh(ctx context.Context) (Feed, error) {
	if _, err := s.cache.Bump(ctx); err != nil {
		return Feed{}, fmt.Errorf("finance: bump cache: %w", err)
	}
	return s.Feed(ctx)
}

// Dashboard loads the feed and computes every aggregate for the filter.
func (s *Service) Dashboard(ctx context.Context, filter DashboardFilter) (Dashboard, error) {
	feed, err := s.Feed(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(feed, filter, s.now().Year())
}

// BuildDashboard aggregates feed for filter. fallbackYear is used when neither the filter
// nor the feed names a year.
func BuildDashboard(feed Feed, filter DashboardFilter, fallbackYear int) (Dashboard, error) {
	yearWise, err := ComputeYearWiseTotals(feed.Finance)
	if err != nil {
		return Dashboard{}, err
	}
	zoneWise, err := ComputeZoneWiseTotals(feed.Finance, feed.Branches)
	if err != nil {
		return Dashboard{}, err
	}

	year := fallbackYear
	switch {
	case filter.Year != nil:
		year = *filter.Year
	case len(yearWise.Years) > 0:
		year = yearWise.Years[0]
	}

	summary := summarizeZones(zoneWise, activeZones(feed.Finance, feed.Branches, year), year, filter.Policy)
	return Dashboard{
		Year:        year,
		Years:       slices.Clone(yearWise.Years),
		Totals:      CalculateTotalsForYear(yearWise, year),
		UniqueZones: CountUniqueZones(feed.Branches),
		BranchCount: len(feed.Branches),
		YearWise:    yearWise,
		ZoneWise:    zoneWise,
		ZoneSummary: summary,
		Comparison:  ZoneComparisonChart(summary),
		Trend:       MonthlySeries(yearWise, year),
	}, nil
}

// EmptyDashboard is the zeroed fallback shown when the feed cannot be loaded.
func EmptyDashboard(year int) Dashboard {
	return Dashboard{
		Year:        year,
		Years:       []int{},
		Totals:      YearTotals{ProfitMargin: "0.00"},
		YearWise:    YearWise{Years: []int{}, Totals: map[int]YearWiseTotals{}},
		ZoneWise:    ZoneWise{Zones: []string{}, Totals: map[string]map[int]ZoneWiseTotals{}},
		ZoneSummary: []ZoneFinancialSummary{},
		Comparison:  ZoneComparisonChart(nil),
		Trend:       MonthlySeries(YearWise{}, year),
		Degraded:    true,
	}
}

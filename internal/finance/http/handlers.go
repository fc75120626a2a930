package financehttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance/export"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance/source"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance/svg"
	"github.com/odyssey-erp/ceo-dashboard/internal/platform/httpx"
)

const defaultRequestTimeout = 15 * time.Second

var supportedLocales = []language.Tag{language.English, language.Indonesian, language.German}

var localeMatcher = language.NewMatcher(supportedLocales)

// DashboardService is the data contract used by the handler.
type DashboardService interface {
	Dashboard(ctx context.Context, filter finance.DashboardFilter) (finance.Dashboard, error)
}

// Invalidator drops the cached feed.
type Invalidator interface {
	Bump(ctx context.Context) (int64, error)
}

// RefreshQueue schedules an asynchronous feed refresh and returns the task id.
type RefreshQueue interface {
	EnqueueRefresh(ctx context.Context, reason string) (string, error)
}

// DegradedObserver counts responses served from the zeroed fallback.
type DegradedObserver interface {
	IncDegraded()
}

// Options tunes optional handler behaviour.
type Options struct {
	Policy         finance.ZoneRowPolicy
	Locale         language.Tag
	RequestTimeout time.Duration
	ExportLimit    int
	Invalidator    Invalidator
	Queue          RefreshQueue
	Observer       DegradedObserver
}

// Handler serves the CEO dashboard finance endpoints.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	opts    Options
	bufPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the finance HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, opts Options) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.ExportLimit <= 0 {
		opts.ExportLimit = 10
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	h := &Handler{
		logger:  logger,
		service: service,
		opts:    opts,
		now:     time.Now,
	}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	dashboard, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.logError("load dashboard", err)
		if h.opts.Observer != nil {
			h.opts.Observer.IncDegraded()
		}
		year := h.now().Year()
		if filter.Year != nil {
			year = *filter.Year
		}
		dashboard = finance.EmptyDashboard(year)
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

type yearsResponse struct {
	Years  []int                          `json:"years"`
	Totals map[int]finance.YearWiseTotals `json:"totals"`
	KPIs   map[int]finance.YearTotals     `json:"kpis"`
}

func (h *Handler) handleYears(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := h.load(w, r)
	if !ok {
		return
	}
	kpis := make(map[int]finance.YearTotals, len(dashboard.Years))
	for _, year := range dashboard.Years {
		kpis[year] = finance.CalculateTotalsForYear(dashboard.YearWise, year)
	}
	httpx.JSON(w, http.StatusOK, yearsResponse{
		Years:  dashboard.YearWise.Years,
		Totals: dashboard.YearWise.Totals,
		KPIs:   kpis,
	})
}

func (h *Handler) handleZones(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, struct {
		finance.ZoneWise
		UniqueZones int `json:"uniqueZones"`
	}{dashboard.ZoneWise, dashboard.UniqueZones})
}

type compareResponse struct {
	Year       int                            `json:"year"`
	Rows       string                         `json:"rows"`
	Summary    []finance.ZoneFinancialSummary `json:"summary"`
	Comparison finance.ZoneComparison         `json:"comparison"`
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	dashboard, ok := h.loadFiltered(w, r, filter)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, compareResponse{
		Year:       dashboard.Year,
		Rows:       filter.Policy.String(),
		Summary:    dashboard.ZoneSummary,
		Comparison: dashboard.Comparison,
	})
}

func (h *Handler) handleCompareSVG(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := h.load(w, r)
	if !ok {
		return
	}
	labels := dashboard.Comparison.Categories
	income, expense, profit := dashboard.Comparison.Income, dashboard.Comparison.Expense, dashboard.Comparison.Profit
	if len(labels) == 0 {
		labels = []string{"No data"}
		income, expense, profit = []float64{0}, []float64{0}, []float64{0}
	}
	chart, err := svg.GroupedBars(svg.DefaultWidth, svg.DefaultHeight, []svg.Series{
		{Label: "Income", Values: income},
		{Label: "Expense", Values: expense},
		{Label: "Profit", Values: profit},
	}, labels, svg.ChartOpts{
		Title:       fmt.Sprintf("Zone comparison %d", dashboard.Year),
		Description: "Income, expense and profit per zone",
	})
	if err != nil {
		h.handleServerError(w, "render zone chart", err)
		return
	}
	h.writeSVG(w, chart)
}

func (h *Handler) handleTrendSVG(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := h.load(w, r)
	if !ok {
		return
	}
	trend := dashboard.Trend
	chart, err := svg.Lines(svg.DefaultWidth, svg.DefaultHeight, []svg.Series{
		{Label: "Income", Values: trend.Income[:]},
		{Label: "Expense", Values: trend.Expense[:]},
		{Label: "Profit", Values: trend.Profit[:]},
	}, trend.Labels[:], svg.ChartOpts{
		Title:       fmt.Sprintf("Monthly trend %d", trend.Year),
		Description: "Monthly income, expense and profit",
		ShowDots:    true,
	})
	if err != nil {
		h.handleServerError(w, "render trend chart", err)
		return
	}
	h.writeSVG(w, chart)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := h.load(w, r)
	if !ok {
		return
	}
	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()
	if err := export.WriteDashboardCSV(buf, dashboard); err != nil {
		h.handleServerError(w, "write dashboard csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteYearlyCSV(buf, dashboard.YearWise); err != nil {
		h.handleServerError(w, "write yearly csv", err)
		return
	}
	h.writeAttachment(w, "text/csv; charset=utf-8", fmt.Sprintf("finance-%d.csv", dashboard.Year), buf.Bytes())
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := h.load(w, r)
	if !ok {
		return
	}
	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()
	if err := export.WriteDashboardXLSX(buf, dashboard, h.locale(r)); err != nil {
		h.handleServerError(w, "write dashboard xlsx", err)
		return
	}
	h.writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fmt.Sprintf("finance-%d.xlsx", dashboard.Year), buf.Bytes())
}

type bumpResponse struct {
	Version int64  `json:"version,omitempty"`
	TaskID  string `json:"taskId,omitempty"`
}

// handleBump enqueues a refresh job, which owns the version bump, when a queue is
// configured. Otherwise the cache is bumped inline.
func (h *Handler) handleBump(w http.ResponseWriter, r *http.Request) {
	if h.opts.Queue != nil {
		taskID, err := h.opts.Queue.EnqueueRefresh(r.Context(), "manual")
		if err != nil {
			h.handleServerError(w, "enqueue feed refresh", err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, bumpResponse{TaskID: taskID})
		return
	}
	if h.opts.Invalidator == nil {
		httpx.RespondError(w, fmt.Errorf("cache: %w", httpx.ErrUnavailable))
		return
	}
	version, err := h.opts.Invalidator.Bump(r.Context())
	if err != nil {
		h.handleServerError(w, "bump feed cache", err)
		return
	}
	httpx.JSON(w, http.StatusOK, bumpResponse{Version: version})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (finance.Dashboard, bool) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.handleFilterError(w, err)
		return finance.Dashboard{}, false
	}
	return h.loadFiltered(w, r, filter)
}

func (h *Handler) loadFiltered(w http.ResponseWriter, r *http.Request, filter finance.DashboardFilter) (finance.Dashboard, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()
	dashboard, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.handleServiceError(w, err)
		return finance.Dashboard{}, false
	}
	return dashboard, true
}

func (h *Handler) parseFilter(r *http.Request) (finance.DashboardFilter, error) {
	filter := finance.DashboardFilter{Policy: h.opts.Policy}
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 || year > 9999 {
			return finance.DashboardFilter{}, validationError{field: "year"}
		}
		filter.Year = &year
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("rows")); raw != "" {
		policy, ok := finance.ParseZoneRowPolicy(raw)
		if !ok {
			return finance.DashboardFilter{}, validationError{field: "rows"}
		}
		filter.Policy = policy
	}
	return filter, nil
}

func (h *Handler) locale(r *http.Request) language.Tag {
	header := r.Header.Get("Accept-Language")
	if strings.TrimSpace(header) == "" {
		return h.opts.Locale
	}
	tag, _ := language.MatchStrings(localeMatcher, header)
	return tag
}

func (h *Handler) writeSVG(w http.ResponseWriter, chart template.HTML) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(chart)); err != nil {
		h.logError("stream svg", err)
	}
}

func (h *Handler) writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(body); err != nil {
		h.logError("stream "+filename, err)
	}
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		httpx.RespondError(w, fmt.Errorf("%s: %w", vErr.Error(), httpx.ErrValidation))
		return
	}
	h.handleServerError(w, "parse filter", err)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	h.logError("load dashboard", err)
	switch {
	case errors.Is(err, finance.ErrMalformedInput), errors.Is(err, source.ErrMalformedFeed):
		httpx.RespondError(w, fmt.Errorf("finance feed: %w", httpx.ErrUpstream))
	default:
		httpx.RespondError(w, fmt.Errorf("finance feed: %w", httpx.ErrUnavailable))
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.RespondError(w, err)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}

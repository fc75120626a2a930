// Package archive persists yearly finance totals so history survives upstream feed changes.
package archive

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
	"github.com/odyssey-erp/ceo-dashboard/internal/platform/db"
)

//go:embed schema.sql
var schemaSQL string

const upsertSnapshot = `
INSERT INTO finance_yearly_snapshots
    (year, total_income, total_expense, total_profit, profit_margin, zone_count, branch_count, captured_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (year) DO UPDATE SET
    total_income = EXCLUDED.total_income,
    total_expense = EXCLUDED.total_expense,
    total_profit = EXCLUDED.total_profit,
    profit_margin = EXCLUDED.profit_margin,
    zone_count = EXCLUDED.zone_count,
    branch_count = EXCLUDED.branch_count,
    captured_at = EXCLUDED.captured_at`

const selectSnapshots = `
SELECT year, total_income::text, total_expense::text, total_profit::text, profit_margin::text,
       zone_count, branch_count, captured_at
FROM finance_yearly_snapshots
ORDER BY year DESC`

// Snapshot is the archived state of one year.
type Snapshot struct {
	Year         int
	Income       decimal.Decimal
	Expense      decimal.Decimal
	Profit       decimal.Decimal
	ProfitMargin decimal.Decimal
	ZoneCount    int
	BranchCount  int
	CapturedAt   time.Time
}

// Conn is the subset of *pgxpool.Pool used by Store.
type Conn interface {
	db.TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads and writes finance_yearly_snapshots.
type Store struct {
	conn Conn
}

// NewStore wraps conn.
func NewStore(conn Conn) *Store {
	return &Store{conn: conn}
}

// EnsureSchema creates the snapshot table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("archive: ensure schema: %w", err)
	}
	return nil
}

// Snapshots builds one snapshot per year of yearWise, most recent first.
func Snapshots(yearWise finance.YearWise, zoneCount, branchCount int, capturedAt time.Time) ([]Snapshot, error) {
	out := make([]Snapshot, 0, len(yearWise.Years))
	for _, year := range yearWise.Years {
		totals := finance.CalculateTotalsForYear(yearWise, year)
		margin, err := decimal.NewFromString(totals.ProfitMargin)
		if err != nil {
			return nil, fmt.Errorf("archive: margin for %d: %w", year, err)
		}
		out = append(out, Snapshot{
			Year:         year,
			Income:       decimal.NewFromFloat(totals.Revenue).Round(2),
			Expense:      decimal.NewFromFloat(totals.Cost).Round(2),
			Profit:       decimal.NewFromFloat(totals.Profit).Round(2),
			ProfitMargin: margin,
			ZoneCount:    zoneCount,
			BranchCount:  branchCount,
			CapturedAt:   capturedAt.UTC(),
		})
	}
	return out, nil
}

// Save upserts snapshots in a single transaction.
func (s *Store) Save(ctx context.Context, snapshots []Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return db.WithTx(ctx, s.conn, func(tx pgx.Tx) error {
		for _, snap := range snapshots {
			if _, err := tx.Exec(ctx, upsertSnapshot,
				snap.Year,
				snap.Income.StringFixed(2),
				snap.Expense.StringFixed(2),
				snap.Profit.StringFixed(2),
				snap.ProfitMargin.StringFixed(2),
				snap.ZoneCount,
				snap.BranchCount,
				snap.CapturedAt,
			); err != nil {
				return fmt.Errorf("archive: upsert %d: %w", snap.Year, err)
			}
		}
		return nil
	})
}

// List returns every archived snapshot, most recent year first.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.conn.Query(ctx, selectSnapshots)
	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			snap                            Snapshot
			income, expense, profit, margin string
		)
		if err := rows.Scan(&snap.Year, &income, &expense, &profit, &margin, &snap.ZoneCount, &snap.BranchCount, &snap.CapturedAt); err != nil {
			return nil, fmt.Errorf("archive: scan: %w", err)
		}
		for _, field := range []struct {
			raw  string
			dest *decimal.Decimal
		}{{income, &snap.Income}, {expense, &snap.Expense}, {profit, &snap.Profit}, {margin, &snap.ProfitMargin}} {
			value, err := decimal.NewFromString(field.raw)
			if err != nil {
				return nil, fmt.Errorf("archive: parse amount: %w", err)
			}
			*field.dest = value
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

// ErrMalformedFeed reports a payload that does not match the feed contract.
var ErrMalformedFeed = errors.New("source: malformed feed")

var validate = validator.New()

type branchDTO struct {
	BranchID int64   `json:"branchId" validate:"required,gt=0"`
	Name     string  `json:"name"`
	Zone     string  `json:"zone"`
	ZoneName *string `json:"zoneName"`
}

type monthDTO struct {
	Month *int     `json:"month" validate:"required,min=1,max=12"`
	Total *float64 `json:"total" validate:"required"`
}

type yearBucketDTO struct {
	Year    int        `json:"year" validate:"required,gt=0"`
	Records []monthDTO `json:"records" validate:"dive"`
}

type financeDTO struct {
	BranchID       int64           `json:"branchId" validate:"required,gt=0"`
	Name           string          `json:"name"`
	MonthlyRevenue []yearBucketDTO `json:"monthly_revenue" validate:"dive"`
	MonthlyCost    []yearBucketDTO `json:"monthly_cost" validate:"dive"`
	MonthlyProfit  []yearBucketDTO `json:"monthly_profit" validate:"dive"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// unwrap accepts either a bare JSON array or a {"data": [...]} envelope.
func unwrap(payload []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedFeed)
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: envelope without data", ErrMalformedFeed)
	}
	return env.Data, nil
}

// DecodeBranches parses and validates a system-info payload.
func DecodeBranches(payload []byte) ([]finance.Branch, error) {
	raw, err := unwrap(payload)
	if err != nil {
		return nil, err
	}
	var dtos []branchDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, fmt.Errorf("%w: systems: %v", ErrMalformedFeed, err)
	}
	branches := make([]finance.Branch, 0, len(dtos))
	for i, dto := range dtos {
		if err := validate.Struct(dto); err != nil {
			return nil, fmt.Errorf("%w: systems[%d]: %s", ErrMalformedFeed, i, describe(err))
		}
		branches = append(branches, finance.Branch{
			BranchID: dto.BranchID,
			Name:     dto.Name,
			Zone:     dto.Zone,
			ZoneName: dto.ZoneName,
		})
	}
	return branches, nil
}

// DecodeFinance parses and validates a finance payload.
func DecodeFinance(payload []byte) ([]finance.FinanceBranch, error) {
	raw, err := unwrap(payload)
	if err != nil {
		return nil, err
	}
	var dtos []financeDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, fmt.Errorf("%w: finance: %v", ErrMalformedFeed, err)
	}
	out := make([]finance.FinanceBranch, 0, len(dtos))
	for i, dto := range dtos {
		if err := validate.Struct(dto); err != nil {
			return nil, fmt.Errorf("%w: finance[%d]: %s", ErrMalformedFeed, i, describe(err))
		}
		out = append(out, finance.FinanceBranch{
			BranchID:       dto.BranchID,
			Name:           dto.Name,
			MonthlyRevenue: toBuckets(dto.MonthlyRevenue),
			MonthlyCost:    toBuckets(dto.MonthlyCost),
			MonthlyProfit:  toBuckets(dto.MonthlyProfit),
		})
	}
	return out, nil
}

func toBuckets(dtos []yearBucketDTO) []finance.YearBucket {
	if dtos == nil {
		return nil
	}
	buckets := make([]finance.YearBucket, 0, len(dtos))
	for _, dto := range dtos {
		records := make([]finance.MonthRecord, 0, len(dto.Records))
		for _, rec := range dto.Records {
			records = append(records, finance.MonthRecord{Month: *rec.Month, Total: *rec.Total})
		}
		buckets = append(buckets, finance.YearBucket{Year: dto.Year, Records: records})
	}
	return buckets
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

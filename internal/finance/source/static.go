package source

import (
	"context"
	"embed"
	"fmt"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Fixture returns the raw embedded payload served at path (SystemsPath or FinancePath).
func Fixture(path string) ([]byte, error) {
	switch path {
	case SystemsPath:
		return fixtures.ReadFile("fixtures/systems.json")
	case FinancePath:
		return fixtures.ReadFile("fixtures/finance.json")
	default:
		return nil, fmt.Errorf("source: no fixture for %s", path)
	}
}

// StaticSource serves the embedded demo feed.
type StaticSource struct {
	Aliases ZoneAliases
}

// Fetch decodes the embedded fixtures through the same validation as live payloads.
func (s StaticSource) Fetch(ctx context.Context) (finance.Feed, error) {
	if err := ctx.Err(); err != nil {
		return finance.Feed{}, err
	}
	systems, err := Fixture(SystemsPath)
	if err != nil {
		return finance.Feed{}, err
	}
	branches, err := DecodeBranches(systems)
	if err != nil {
		return finance.Feed{}, err
	}
	payload, err := Fixture(FinancePath)
	if err != nil {
		return finance.Feed{}, err
	}
	records, err := DecodeFinance(payload)
	if err != nil {
		return finance.Feed{}, err
	}
	return finance.Feed{Branches: s.Aliases.Apply(branches), Finance: records}, nil
}

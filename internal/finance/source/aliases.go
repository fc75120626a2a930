package source

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
)

// ZoneAliases maps raw zone codes to display names.
type ZoneAliases map[string]string

type aliasFile struct {
	Zones map[string]string `yaml:"zones"`
}

// LoadZoneAliases reads a YAML file of the form:
//
//	zones:
//	  HP: Hill Park
//
// An empty path yields no aliases.
func LoadZoneAliases(path string) (ZoneAliases, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read zone aliases: %w", err)
	}
	return ParseZoneAliases(data)
}

// ParseZoneAliases decodes the YAML alias document.
func ParseZoneAliases(data []byte) (ZoneAliases, error) {
	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("source: parse zone aliases: %w", err)
	}
	aliases := make(ZoneAliases, len(file.Zones))
	for code, name := range file.Zones {
		code = strings.TrimSpace(code)
		name = strings.TrimSpace(name)
		if code == "" || name == "" {
			continue
		}
		aliases[code] = name
	}
	return aliases, nil
}

// Apply fills ZoneName for branches whose feed record omitted it. Present values,
// including blank ones, are left untouched. The input slice is not modified.
func (a ZoneAliases) Apply(branches []finance.Branch) []finance.Branch {
	if len(a) == 0 {
		return branches
	}
	out := make([]finance.Branch, len(branches))
	for i, b := range branches {
		out[i] = b
		if b.ZoneName != nil {
			continue
		}
		if name, ok := a[strings.TrimSpace(b.Zone)]; ok {
			alias := name
			out[i].ZoneName = &alias
		}
	}
	return out
}

// Package profile holds the analysis profile catalog: per-contract-family
// prompt tuning shipped as embedded YAML.
package profile

import (
	"fmt"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

//go:embed profiles.yaml
var profilesYAML []byte

const DefaultID = "generic"

type Catalog struct {
	byID  map[string]domain.AnalysisProfile
	order []string
}

func NewCatalog() (*Catalog, error) {
	var doc struct {
		Profiles []domain.AnalysisProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(profilesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded profiles: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("embedded profile catalog is empty")
	}

	c := &Catalog{byID: make(map[string]domain.AnalysisProfile, len(doc.Profiles))}
	for _, p := range doc.Profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("profile without id in catalog")
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	if _, ok := c.byID[DefaultID]; !ok {
		return nil, fmt.Errorf("catalog is missing the %q profile", DefaultID)
	}
	return c, nil
}

// Resolve returns the profile for id, falling back to the generic profile
// when id is empty. Unknown ids are an input error.
func (c *Catalog) Resolve(id string) (domain.AnalysisProfile, error) {
	if id == "" {
		id = DefaultID
	}
	p, ok := c.byID[id]
	if !ok {
		return domain.AnalysisProfile{}, domain.WrapError(domain.ErrInvalidInput, "resolve profile", fmt.Errorf("unknown profile %q", id))
	}
	return p, nil
}

func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

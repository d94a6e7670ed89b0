// Package directory serves the company list from static configuration.
package directory

import (
	"context"

	"github.com/amishk599/ibwatch/internal/model"
)

// Static is a CompanyDirectory over a fixed company list, typically the
// companies section of the YAML config.
type Static struct {
	companies []model.Company
}

var _ model.CompanyDirectory = (*Static)(nil)

// NewStatic copies companies so later edits to the slice do not leak into a
// running pass.
func NewStatic(companies []model.Company) *Static {
	cp := make([]model.Company, len(companies))
	copy(cp, companies)
	return &Static{companies: cp}
}

// ActiveCompanies returns the active companies in configuration order.
func (s *Static) ActiveCompanies(ctx context.Context) ([]model.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var active []model.Company
	for _, c := range s.companies {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

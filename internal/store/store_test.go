package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/amishk599/ibwatch/internal/model"
)

func testRecord(companyID, externalID string, seen time.Time) model.NormalizedRecord {
	loc := "New York, NY"
	return model.NormalizedRecord{
		CompanyID:  companyID,
		Source:     "greenhouse",
		ExternalID: externalID,
		Title:      "Investment Banking Summer Analyst",
		Location:   &loc,
		URL:        "https://boards.greenhouse.io/" + companyID + "/jobs/" + externalID,
		RoleType:   model.RoleSeasonalAnalyst,
		Tags:       []string{model.TagInvestmentBanking},
		LastSeenAt: seen,
		IsActive:   true,
		Raw:        json.RawMessage(fmt.Sprintf(`{"id":%q}`, externalID)),
	}
}

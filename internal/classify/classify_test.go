package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amishk599/ibwatch/internal/model"
	"github.com/amishk599/ibwatch/internal/normalize"
)

func TestRoleType(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   model.RoleType
		wantOK bool
	}{
		{name: "summer intern", text: "investment banking summer intern", want: model.RoleSeasonalAnalyst, wantOK: true},
		{name: "internship", text: "m&a internship program", want: model.RoleSeasonalAnalyst, wantOK: true},
		{name: "seasonal wins over full time", text: "summer intern with full-time offer potential", want: model.RoleSeasonalAnalyst, wantOK: true},
		{name: "full time", text: "investment banking analyst, full time", want: model.RoleFullTime, wantOK: true},
		{name: "fulltime without separator", text: "fulltime associate", want: model.RoleFullTime, wantOK: true},
		{name: "new grad", text: "new grad analyst", want: model.RoleFullTime, wantOK: true},
		{name: "campus", text: "campus recruiting 2026", want: model.RoleFullTime, wantOK: true},
		{name: "analyst program", text: "corporate finance analyst program", want: model.RoleFullTime, wantOK: true},
		{name: "substring summers", text: "investment banking summers program", want: model.RoleSeasonalAnalyst, wantOK: true},
		{name: "substring interning", text: "m&a interning analyst", want: model.RoleSeasonalAnalyst, wantOK: true},
		{name: "international matches intern", text: "international investment banking analyst full-time", want: model.RoleSeasonalAnalyst, wantOK: true},
		{name: "no role keyword", text: "managing director, m&a", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := RoleType(tc.text)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHasDomainTerms(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"investment banking division", true},
		{"investment   banking", true},
		{"ibd analyst", true},
		{"m&a advisory", true},
		{"m & a advisory", true},
		{"mergers and acquisitions", true},
		{"corporate finance", true},
		{"ma in economics", false},
		{"libdrive engineer", false},
		{"retail sales associate", false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, HasDomainTerms(tc.text))
		})
	}
}

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Software Engineer, Platform", true},
		{"Branch Manager", true},
		{"WEALTH Management Associate", true},
		{"Risk Analyst", true},
		{"Investment Banking Summer Analyst", false},
		{"Engineering Summer Analyst", false}, // whole words only
		{"Productivity Analyst", false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, IsExcluded(tc.text))
		})
	}
}

func TestScope_ExtraKeywords(t *testing.T) {
	text := "special situations group summer analyst"

	assert.False(t, IsInScope(text, nil))
	assert.True(t, IsInScope(text, []string{"Special Situations"}))
	assert.False(t, IsInScope(text, []string{"restructuring"}))
}

func TestScope_BlankKeywordsIgnored(t *testing.T) {
	assert.False(t, IsInScope("retail sales summer intern", []string{"", "   "}))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		posting   model.RawPosting
		extra     []string
		wantRole  model.RoleType
		wantStage Stage
	}{
		{
			name:      "seasonal banking role accepted",
			posting:   model.RawPosting{Title: "2026 Investment Banking Summer Analyst"},
			wantRole:  model.RoleSeasonalAnalyst,
			wantStage: StageAccepted,
		},
		{
			name:      "full time banking role accepted",
			posting:   model.RawPosting{Title: "M&A Analyst", Metadata: []model.MetadataField{{Name: "Employment Type", Value: "Full-Time"}}},
			wantRole:  model.RoleFullTime,
			wantStage: StageAccepted,
		},
		{
			name:      "no role keyword",
			posting:   model.RawPosting{Title: "Investment Banking Vice President"},
			wantStage: StageRoleType,
		},
		{
			name:      "role match is not enough without domain terms",
			posting:   model.RawPosting{Title: "Marketing Summer Intern"},
			wantStage: StageScope,
		},
		{
			name:      "engineer in title is excluded",
			posting:   model.RawPosting{Title: "Software Engineer, Platform", Content: "Summer internship supporting our investment banking teams."},
			wantStage: StageExcluded,
		},
		{
			name: "engineer in content only is not excluded",
			posting: model.RawPosting{
				Title:   "Investment Banking Summer Analyst",
				Content: "<p>Partner with our engineer colleagues on deal tooling.</p>",
			},
			wantRole:  model.RoleSeasonalAnalyst,
			wantStage: StageAccepted,
		},
		{
			name: "forced keyword cannot override exclusion",
			posting: model.RawPosting{
				Title:       "Special Situations Product Summer Analyst",
				Departments: []string{"Special Situations"},
			},
			extra:     []string{"special situations"},
			wantStage: StageExcluded,
		},
		{
			name: "forced keyword includes non-banking wording",
			posting: model.RawPosting{
				Title:       "Special Situations Summer Analyst",
				Departments: []string{"Principal Investing"},
			},
			extra:     []string{"special situations"},
			wantRole:  model.RoleSeasonalAnalyst,
			wantStage: StageAccepted,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			role, stage := Evaluate(normalize.Normalize(tc.posting), NewScope(tc.extra))
			assert.Equal(t, tc.wantStage, stage)
			assert.Equal(t, tc.wantRole, role)
		})
	}
}

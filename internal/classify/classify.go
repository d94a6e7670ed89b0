// Package classify decides whether a normalized posting is in scope and
// which role type it is.
package classify

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/amishk599/ibwatch/internal/model"
	"github.com/amishk599/ibwatch/internal/normalize"
)

// RoleType returns the role type named by the inclusion text. The seasonal
// check wins when both match. ok is false when neither matches.
func RoleType(inclusion string) (role model.RoleType, ok bool) {
	if IsSeasonal(inclusion) {
		return model.RoleSeasonalAnalyst, true
	}
	if IsFullTime(inclusion) {
		return model.RoleFullTime, true
	}
	return "", false
}

// Scope is the domain-inclusion test for one company: the baseline pattern
// plus the company's extra keywords. A Scope is not safe for concurrent use.
type Scope struct {
	matcher *ahocorasick.Matcher
}

// NewScope builds a Scope. Keywords are matched as lower-cased substrings;
// blank keywords are ignored.
func NewScope(extraKeywords []string) *Scope {
	var keywords []string
	for _, kw := range extraKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	s := &Scope{}
	if len(keywords) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(keywords)
	}
	return s
}

// Match reports whether the lower-cased inclusion text is in scope.
func (s *Scope) Match(inclusion string) bool {
	if HasDomainTerms(inclusion) {
		return true
	}
	return s.matcher != nil && len(s.matcher.Match([]byte(inclusion))) > 0
}

// IsInScope is the one-shot form of NewScope(extraKeywords).Match(inclusion).
func IsInScope(inclusion string, extraKeywords []string) bool {
	return NewScope(extraKeywords).Match(inclusion)
}

// Stage names the classifier step that dropped a posting.
type Stage string

const (
	StageAccepted Stage = ""
	StageRoleType Stage = "role_type"
	StageScope    Stage = "scope"
	StageExcluded Stage = "excluded"
)

// Evaluate runs role-type detection, the domain-inclusion test and the
// exclusion test in that order. A posting is kept only when it returns
// StageAccepted, in which case role is set.
func Evaluate(blobs normalize.Blobs, scope *Scope) (role model.RoleType, stage Stage) {
	role, ok := RoleType(blobs.Inclusion)
	if !ok {
		return "", StageRoleType
	}
	if !scope.Match(blobs.Inclusion) {
		return "", StageScope
	}
	if IsExcluded(blobs.Exclusion) {
		return "", StageExcluded
	}
	return role, StageAccepted
}

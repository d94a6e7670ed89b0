package classify

import "regexp"

var (
	// seasonalPattern marks internships and summer programs. It is an
	// unanchored substring test, so "summers" and "international" match too.
	seasonalPattern = regexp.MustCompile(`summer|intern|internship`)

	// fullTimePattern marks full-time, new-grad and campus hiring.
	fullTimePattern = regexp.MustCompile(`full[-\s]?time|new grad|graduate|campus|analyst program`)

	// domainPattern is the baseline banking/advisory vocabulary.
	domainPattern = regexp.MustCompile(`investment\s+banking|\bibd\b|\bm\s*&\s*a\b|mergers|acquisitions|corporate\s+finance`)

	// exclusionPattern vetoes adjacent but out-of-scope roles.
	exclusionPattern = regexp.MustCompile(`(?i)\b(teller|branch|wealth|software|engineer|developer|product|operations|risk|compliance|audit)\b`)
)

// IsSeasonal reports whether the lower-cased inclusion text names a seasonal
// or internship role.
func IsSeasonal(text string) bool {
	return seasonalPattern.MatchString(text)
}

// IsFullTime reports whether the lower-cased inclusion text names a
// full-time, new-grad or campus role.
func IsFullTime(text string) bool {
	return fullTimePattern.MatchString(text)
}

// HasDomainTerms reports whether the lower-cased inclusion text uses the
// baseline investment-banking vocabulary.
func HasDomainTerms(text string) bool {
	return domainPattern.MatchString(text)
}

// IsExcluded reports whether the exclusion text names an out-of-scope role.
// Matching is case-insensitive.
func IsExcluded(text string) bool {
	return exclusionPattern.MatchString(text)
}

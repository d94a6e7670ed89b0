// Package normalize turns a RawPosting into the two text blobs the
// classifier works on.
package normalize

import (
	"strings"

	"github.com/amishk599/ibwatch/internal/model"
)

// Blobs holds the classification text for one posting.
type Blobs struct {
	// Inclusion covers every field, markup stripped, lower-cased.
	Inclusion string
	// Exclusion covers title, departments and metadata only, original case.
	Exclusion string
}

// Normalize derives both blobs from p. It has no side effects and the same
// posting always yields the same blobs.
func Normalize(p model.RawPosting) Blobs {
	return Blobs{
		Inclusion: InclusionText(p),
		Exclusion: ExclusionText(p),
	}
}

// InclusionText joins title, departments, offices, location, metadata and
// stripped content with single spaces and lower-cases the result.
func InclusionText(p model.RawPosting) string {
	parts := []string{
		p.Title,
		strings.Join(p.Departments, " "),
		strings.Join(p.Offices, " "),
		p.Location,
		metadataText(p.Metadata),
		StripMarkup(p.Content),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// ExclusionText joins title, departments and metadata. Content and location
// are left out so long descriptions cannot trigger an exclusion.
func ExclusionText(p model.RawPosting) string {
	parts := []string{
		p.Title,
		strings.Join(p.Departments, " "),
		metadataText(p.Metadata),
	}
	return strings.Join(parts, " ")
}

func metadataText(fields []model.MetadataField) string {
	pairs := make([]string, len(fields))
	for i, f := range fields {
		pairs[i] = f.Name + " " + f.Value
	}
	return strings.Join(pairs, " ")
}

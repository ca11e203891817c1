package segmenter

import (
	"regexp"
	"strings"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// headingRe matches semester and year headings: "1st Semester", "2 nd
// Semester", "Year One", "Year 3", case-insensitive.
var headingRe = regexp.MustCompile(`(?i)\b\d+\s*(?:st|nd|rd|th)?\s*Semester\b|\bYear\s+(?:One|Two|Three|Four|[1-4])\b`)

// SplitSemesters splits text into an ordered sequence of semester blocks.
// Each block spans from its heading up to (excluding) the next heading.
//
// A block whose normalized heading duplicates an already-emitted heading is
// dropped; repeated page headers and footers would otherwise reintroduce the
// same semester. When no heading is found the whole text becomes one
// unlabeled block, so downstream stages always have something to walk.
func SplitSemesters(text string) []types.SemesterBlock {
	locs := headingRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []types.SemesterBlock{{Raw: text, Ordinal: 1}}
	}

	blocks := make([]types.SemesterBlock, 0, len(locs))
	seen := make(map[string]bool, len(locs))

	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		label := strings.TrimSpace(text[loc[0]:loc[1]])
		norm := normalizeHeading(label)
		if seen[norm] {
			continue
		}
		seen[norm] = true

		blocks = append(blocks, types.SemesterBlock{
			Label:   label,
			Raw:     text[loc[0]:end],
			Ordinal: len(blocks) + 1,
		})
	}

	return blocks
}

// normalizeHeading lowercases a heading and collapses interior whitespace so
// "1st  Semester" and "1ST SEMESTER" compare equal.
func normalizeHeading(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

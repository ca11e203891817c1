package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

func TestRejectTitle_Rules(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		rejected bool
	}{
		{"comma without AND", "THERMODYNAMICS, ADVANCED", true},
		{"comma with AND kept", "STATICS, AND DYNAMICS", false},
		{"plain AND title", "STATICS AND DYNAMICS", false},
		{"bare course code", "CS101", true},
		{"too short", "OS", true},
		{"accepted title", "OPERATING SYSTEMS", false},
		{"forbidden punctuation", "SEE ALSO *NOTE*", true},
		{"sentence fragment", "THIS LINE ENDS.", true},
		{"starts with non-letter", "1ST TOPIC OVERVIEW", true},
		{"isbn line", "ISBN 960-7309-42-9", true},
		{"publisher line", "UNIVERSITY PUBLISHER ATHENS", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rejected, rejectTitle(tt.line))
		})
	}
}

func TestIsUppercaseLine(t *testing.T) {
	assert.True(t, isUppercaseLine("OPERATING SYSTEMS"))
	assert.True(t, isUppercaseLine("ALGORITHMS 2"))
	assert.False(t, isUppercaseLine("Operating Systems"))
	assert.False(t, isUppercaseLine("1995"), "needs at least one letter")
	assert.False(t, isUppercaseLine(""))
}

func TestCleanTitle_StripsParentheticals(t *testing.T) {
	assert.Equal(t, "ALGORITHMS", cleanTitle("ALGORITHMS (ELECTIVE)"))
	assert.Equal(t, "DATA STRUCTURES", cleanTitle("DATA  STRUCTURES"))
}

func TestSegmentLessons_CarvesBodies(t *testing.T) {
	text := strings.Join([]string{
		"OPERATING SYSTEMS",
		"Processes and scheduling.",
		"General competences",
		"Understand kernel design.",
		"Assessment",
		"Written exam.",
		"DATA STRUCTURES",
		"General competences",
		"Lists, trees, and graphs.",
		"Assessment",
	}, "\n")

	lessons := SegmentLessons(text)

	require.Len(t, lessons, 2)
	assert.Equal(t, "OPERATING SYSTEMS", lessons[0].Title)
	assert.Equal(t, "Understand kernel design.", lessons[0].Description)
	assert.Equal(t, "DATA STRUCTURES", lessons[1].Title)
	assert.Equal(t, "Lists, trees, and graphs.", lessons[1].Description)
}

func TestSegmentLessons_RejectedCandidateFoldsIntoBody(t *testing.T) {
	text := strings.Join([]string{
		"OPERATING SYSTEMS",
		"General competences",
		"THERMODYNAMICS, ADVANCED", // rejected candidate, stays in the body
		"Assessment",
	}, "\n")

	lessons := SegmentLessons(text)

	require.Len(t, lessons, 1)
	assert.Equal(t, "OPERATING SYSTEMS", lessons[0].Title)
	assert.Contains(t, lessons[0].Description, "THERMODYNAMICS, ADVANCED")
}

func TestSegmentLessons_DuplicateTitleLastWins(t *testing.T) {
	text := strings.Join([]string{
		"ALGORITHMS",
		"General competences",
		"first pass",
		"Assessment",
		"ALGORITHMS",
		"General competences",
		"second pass",
		"Assessment",
	}, "\n")

	lessons := SegmentLessons(text)

	require.Len(t, lessons, 1)
	assert.Equal(t, "second pass", lessons[0].Description)
}

func TestSegmentLessons_IsolatedResultPerCall(t *testing.T) {
	text := "ALGORITHMS\nGeneral competences\nbody\nAssessment"

	a := SegmentLessons(text)
	b := SegmentLessons(text)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotSame(t, a[0], b[0], "workers must not share result containers")
}

func TestExtractDescription_EmptySpanYieldsSentinel(t *testing.T) {
	body := "intro\nGeneral competences\nAssessment\ntrailing text"

	desc := ExtractDescription(body)

	assert.Equal(t, types.NoDataSentinel, desc)
	assert.NotEmpty(t, desc, "sentinel is never the empty string")
}

func TestExtractDescription_BoilerplateStripped(t *testing.T) {
	body := "General competences\nCourse content\nreal description\nAssessment"

	assert.Equal(t, "real description", ExtractDescription(body))
}

func TestExtractDescription_MissingEndMarkerRunsToEnd(t *testing.T) {
	body := "General competences\nruns to the end of the body"

	assert.Equal(t, "runs to the end of the body", ExtractDescription(body))
}

func TestExtractDescription_FallbackUppercaseSpan(t *testing.T) {
	body := "COURSE OVERVIEW\nthe actual description lines\nNEXT SECTION\nignored"

	assert.Equal(t, "the actual description lines", ExtractDescription(body))
}

func TestExtractDescription_OnlyBoilerplateYieldsSentinel(t *testing.T) {
	body := "General competences\nCourse content\nAssessment"

	assert.Equal(t, types.NoDataSentinel, ExtractDescription(body))
}

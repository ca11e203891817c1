package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

func TestTextFromStream_TjOperators(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n(Course Outlines) Tj\n0 -14 Td\n(1st Semester) Tj\nET")

	got := textFromStream(stream)

	assert.Equal(t, "Course Outlines\n1st Semester", got)
}

func TestTextFromStream_TJArray(t *testing.T) {
	stream := []byte("[(ALGO) -250 (RITHMS)] TJ")

	assert.Equal(t, "ALGORITHMS", textFromStream(stream))
}

func TestTextFromStream_QuoteOperatorStartsNewLine(t *testing.T) {
	stream := []byte("(first) Tj\n(second) '")

	assert.Equal(t, "first\nsecond", textFromStream(stream))
}

func TestTextFromStream_TStarEmitsNewline(t *testing.T) {
	stream := []byte("(one) Tj\nT*\n(two) Tj")

	assert.Equal(t, "one\ntwo", textFromStream(stream))
}

func TestTextFromStream_IgnoresNonTextOperators(t *testing.T) {
	stream := []byte("q\n1 0 0 1 50 700 cm\n0.5 w\nQ")

	assert.Equal(t, "", textFromStream(stream))
}

func TestDecodePDFString_Escapes(t *testing.T) {
	assert.Equal(t, "a(b)c", decodePDFString([]byte(`a\(b\)c`)))
	assert.Equal(t, `back\slash`, decodePDFString([]byte(`back\\slash`)))
	assert.Equal(t, "tab\there", decodePDFString([]byte(`tab\there`)))
}

func TestDecodePDFString_OctalEscape(t *testing.T) {
	assert.Equal(t, "a b", decodePDFString([]byte(`a\040b`)))
	assert.Equal(t, "A", decodePDFString([]byte(`\101`)))
}

func TestCleanText_CollapsesIntraLineWhitespace(t *testing.T) {
	got := cleanText("OPERATING   SYSTEMS\t\tNOTES\nsecond  line")

	assert.Equal(t, "OPERATING SYSTEMS NOTES\nsecond line", got)
}

func TestCleanText_KeepsLineStructure(t *testing.T) {
	got := cleanText("1st Semester\n\n\n\nALGORITHMS\nbody")

	assert.Equal(t, "1st Semester\n\nALGORITHMS\nbody", got)
}

func TestCleanText_NormalizesCarriageReturns(t *testing.T) {
	got := cleanText("a\r\nb\rc")

	assert.Equal(t, "a\nb\nc", got)
}

func TestClonePages_IsolatesCaller(t *testing.T) {
	src := []types.PageText{{Ordinal: 1, Text: "one"}, {Ordinal: 2, Text: "two"}}

	dst := clonePages(src)
	dst[0].Text = "mutated"

	assert.Equal(t, "one", src[0].Text)
}

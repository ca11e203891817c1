package extractor

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPageText extracts text from a single PDF page via the pdfcpu
// content stream. Failures yield an empty string; the page keeps its slot.
func extractPageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromStream parses PDF content stream operators for text. Line
// structure is preserved: positioning operators (Td/TD/T*) and the quote
// operator emit newlines, because downstream segmentation is line based.
func textFromStream(data []byte) string {
	var sb strings.Builder

	lines := bytes.Split(data, []byte{'\n'})
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Tj operator: (text) Tj
		// TJ operator: [(text) -100 (more text)] TJ
		if bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
			continue
		}

		// ' operator: move to next line and show text.
		if bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodePDFString(m[1]))
			}
			continue
		}

		// Td/TD move the text cursor to a new line position.
		if bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")) ||
			bytes.Equal(line, []byte("T*")) {
			sb.WriteByte('\n')
		}
	}

	return cleanText(sb.String())
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// Octal escape, e.g. \040 for space.
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// cleanText normalises whitespace within lines while keeping the line
// structure intact. Runs of spaces and tabs collapse to one space, trailing
// space is trimmed, and blank-line runs collapse to a single blank line.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = collapseSpaces(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// collapseSpaces squeezes horizontal whitespace runs into single spaces and
// drops non-printable runes.
func collapseSpaces(line string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range line {
		if r == ' ' || r == '\t' || unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

package segmenter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// Description span markers and boilerplate, as they appear in course outline
// bodies.
const (
	descStartMarker = "General competences"
	descEndMarker   = "Assessment"
	boilerplate     = "Course content"
)

// forbiddenTitleChars never appear in a real lesson title; their presence
// marks a list item, an emphasis line, or a sentence fragment.
const forbiddenTitleChars = "*_=!?."

var (
	// courseCodeRe matches a bare course code: letters directly followed by
	// digits and nothing else, e.g. "CS101".
	courseCodeRe = regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)

	// bareYearRe matches a line that is only a 4-digit year, typical of
	// bibliography entries.
	bareYearRe = regexp.MustCompile(`^[0-9]{4}$`)

	// parentheticalRe matches parenthetical suffixes stripped from accepted
	// titles, e.g. "ALGORITHMS (ELECTIVE)".
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)\s*`)
)

// SegmentLessons walks the lines of one semester block and carves per-lesson
// records. A non-empty fully-uppercase line opens a new lesson unless a
// rejection rule fires; rejected candidate lines fold into the currently
// open lesson's body. Records keep insertion order and titles are unique,
// last accepted wins.
//
// The function returns an isolated slice so callers may fan blocks out to
// workers and merge the partial results sequentially.
func SegmentLessons(text string) []*types.LessonRecord {
	var lessons []*types.LessonRecord
	var current *types.LessonRecord
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Description = ExtractDescription(strings.Join(body, "\n"))
		lessons = putLesson(lessons, current)
		current = nil
		body = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if isUppercaseLine(line) {
			if rejectTitle(line) {
				// Not a title after all; it belongs to the open body.
				if current != nil {
					body = append(body, line)
				}
				continue
			}
			flush()
			current = &types.LessonRecord{Title: cleanTitle(line)}
			continue
		}

		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return lessons
}

// putLesson appends rec, replacing an earlier record with the same title in
// place so discovery order is kept.
func putLesson(lessons []*types.LessonRecord, rec *types.LessonRecord) []*types.LessonRecord {
	for i, existing := range lessons {
		if existing.Title == rec.Title {
			lessons[i] = rec
			return lessons
		}
	}
	return append(lessons, rec)
}

// isUppercaseLine reports whether the line contains at least one letter and
// no lowercase letters.
func isUppercaseLine(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// rejectTitle applies the ordered candidate-rejection rules. A true result
// folds the line into the open lesson body instead of starting a new lesson.
func rejectTitle(line string) bool {
	// 1. Characters that never occur in real titles.
	if strings.ContainsAny(line, forbiddenTitleChars) {
		return true
	}
	// 2. A comma without the token "AND" marks an enumeration, not a title.
	if strings.Contains(line, ",") && !containsToken(line, "AND") {
		return true
	}
	// 3. Bare course code such as "CS101".
	if courseCodeRe.MatchString(line) {
		return true
	}
	// 4. Too short to be a title.
	if utf8.RuneCountInString(strings.TrimSpace(line)) <= 3 {
		return true
	}
	// 5. Titles start with a letter.
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsLetter(first) {
		return true
	}
	// 6. Bibliographic line.
	if strings.Contains(line, "ISBN") || strings.Contains(line, "PUBLISHER") || bareYearRe.MatchString(line) {
		return true
	}
	return false
}

// containsToken reports whether any whitespace-delimited word of line,
// stripped of surrounding punctuation, equals token.
func containsToken(line, token string) bool {
	for _, field := range strings.Fields(line) {
		if strings.Trim(field, ",.;:()") == token {
			return true
		}
	}
	return false
}

// cleanTitle strips parenthetical suffixes and collapses the remaining
// whitespace.
func cleanTitle(title string) string {
	title = parentheticalRe.ReplaceAllString(title, " ")
	return strings.Join(strings.Fields(title), " ")
}

// ExtractDescription locates the conventional description span within a raw
// lesson body: the text between "General competences" and "Assessment".
// When the start marker is absent it falls back to the span between the
// first uppercase-title line and the next one. Boilerplate is stripped, and
// an empty remainder yields types.NoDataSentinel so consumers can
// distinguish "no data present" from an empty string.
func ExtractDescription(body string) string {
	var span string

	if start := strings.Index(body, descStartMarker); start >= 0 {
		rest := body[start+len(descStartMarker):]
		if end := strings.Index(rest, descEndMarker); end >= 0 {
			span = rest[:end]
		} else {
			span = rest
		}
	} else {
		span = uppercaseSpan(body)
	}

	span = strings.ReplaceAll(span, boilerplate, "")
	span = strings.TrimSpace(span)
	if span == "" {
		return types.NoDataSentinel
	}
	return span
}

// uppercaseSpan returns the lines between the first uppercase-title line and
// the next one. Without any uppercase line the whole body is returned, so
// content is never silently dropped.
func uppercaseSpan(body string) string {
	lines := strings.Split(body, "\n")

	start := -1
	for i, line := range lines {
		if isUppercaseLine(strings.TrimSpace(line)) {
			start = i
			break
		}
	}
	if start < 0 {
		return body
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if isUppercaseLine(strings.TrimSpace(lines[i])) {
			end = i
			break
		}
	}

	return strings.Join(lines[start+1:end], "\n")
}

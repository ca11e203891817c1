package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Name spans never cross a line break; page text keeps its lines.
	universityOfRe = regexp.MustCompile(`\bUniversity[ \t]+of[ \t]+[A-Z][A-Za-z]+(?:[ \t]+[A-Z][A-Za-z]+)*`)
	namedUniRe     = regexp.MustCompile(`\b[A-Z][A-Za-z]+(?:[ \t]+[A-Z][A-Za-z]+)*[ \t]+University\b`)

	wsRe = regexp.MustCompile(`\s+`)
)

// countryByKeyword maps lowercase fragments of a university name to a
// country. Lookup is substring based.
var countryByKeyword = map[string]string{
	"patras":       "Greece",
	"athens":       "Greece",
	"thessaloniki": "Greece",
	"aristotle":    "Greece",
	"crete":        "Greece",
	"piraeus":      "Greece",
	"ioannina":     "Greece",
	"cyprus":       "Cyprus",
	"nicosia":      "Cyprus",
	"london":       "United Kingdom",
	"oxford":       "United Kingdom",
	"cambridge":    "United Kingdom",
	"munich":       "Germany",
	"berlin":       "Germany",
}

// DetectUniversity finds the university name in document text, falling back
// to a name derived from the source filename when the text never states one.
func DetectUniversity(text, path string) string {
	if m := universityOfRe.FindString(text); m != "" {
		return wsRe.ReplaceAllString(m, " ")
	}
	if m := namedUniRe.FindString(text); m != "" {
		m = wsRe.ReplaceAllString(m, " ")
		// Capitalized sentence openers are not part of the name.
		m = strings.TrimPrefix(m, "The ")
		return m
	}
	return nameFromPath(path)
}

// CountryFor guesses the country for a university name. Returns an empty
// string when no keyword matches.
func CountryFor(university string) string {
	lower := strings.ToLower(university)
	for keyword, country := range countryByKeyword {
		if strings.Contains(lower, keyword) {
			return country
		}
	}
	return ""
}

// nameFromPath turns "uni_patras-guide.pdf" into "Uni Patras Guide".
func nameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = wsRe.ReplaceAllString(strings.TrimSpace(base), " ")
	if base == "" {
		return "Unknown University"
	}

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

package segmenter

import "strings"

// DefaultMarkers is the priority-ordered list of phrases that introduce the
// course outline section of a curriculum document.
var DefaultMarkers = []string{"Course Outlines", "Course Content"}

// SliceAfterMarker returns the text starting immediately after the first
// marker phrase that occurs, scanning markers in priority order and stopping
// at the first hit. Matching is case-insensitive.
//
// When no marker matches, the full text is returned unchanged with
// found=false: content is never silently dropped.
func SliceAfterMarker(text string, markers []string) (remainder string, found bool) {
	lower := strings.ToLower(text)
	for _, marker := range markers {
		idx := strings.Index(lower, strings.ToLower(marker))
		if idx < 0 {
			continue
		}
		return text[idx+len(marker):], true
	}
	return text, false
}

package types

import "strings"

// PageText is the extracted plain text of a single PDF page.
// Text may be empty for image-only pages; the page keeps its position.
type PageText struct {
	Ordinal int    // 1-based page number
	Text    string // raw extracted text, possibly empty
}

// Document is the result of text extraction for one source PDF.
type Document struct {
	SourcePath string
	SourceURL  string // set when the document was fetched remotely
	Pages      []PageText
}

// FullText concatenates all page texts in page order, newline separated.
func (d *Document) FullText() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// PageCount returns the number of pages, including empty ones.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// SemesterBlock is a contiguous text span introduced by a recognized
// semester or year heading.
type SemesterBlock struct {
	Label   string // heading text, empty for the unlabeled fallback block
	Raw     string // span from heading up to (excluding) the next heading
	Ordinal int    // 1-based position in discovery order
}

// Package segmenter carves extracted curriculum text into structure.
//
// Three stages run in order: SliceAfterMarker drops any preamble before the
// curriculum section, SplitSemesters breaks the remainder into ordered
// semester blocks, and SegmentLessons walks a block's lines to detect lesson
// titles and carve per-lesson bodies.
//
// All segmentation is best-effort heuristics over plain-text layout
// conventions; a miss degrades (full text kept, single unlabeled block)
// rather than failing the document.
package segmenter

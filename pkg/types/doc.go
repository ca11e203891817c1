// Package types provides shared type definitions for the SkillCrawl pipeline.
//
// This package defines the domain types passed between pipeline stages:
// extracted documents, semester blocks, lesson records, and the per-university
// index that the cache store persists.
//
// # Core Types
//
// Document is the output of text extraction, one PageText per PDF page:
//
//	doc := &types.Document{
//	    SourcePath: "curriculum/program_of_studies.pdf",
//	    Pages:      []types.PageText{{Ordinal: 1, Text: "..."}},
//	}
//
// LessonRecord holds one course entry with its attributed skills:
//
//	rec := &types.LessonRecord{
//	    Title:       "OPERATING SYSTEMS",
//	    Description: "Processes, scheduling, memory management ...",
//	}
//
// # Sentinels
//
// Two sentinel values cross component boundaries and must be treated
// specially by every consumer:
//
//   - NoDataSentinel marks a lesson whose description span was present but
//     empty. It is never equal to the empty string, which would mean the
//     lesson was not segmented at all.
//   - UnknownSkillLabel is assigned when a skill identifier cannot be
//     resolved to a human-readable label. Identifiers are never dropped for
//     lack of a label.
package types

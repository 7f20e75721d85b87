package comparison

import "twmods/feature/manifest"

// EnrichedMod is a parsed manifest entry joined with workshop metadata.
// It is derived per request and never persisted.
type EnrichedMod struct {
	manifest.Mod

	// WorkshopTags is the tag list from the metadata cache, empty on a miss.
	WorkshopTags []string
	// DerivedType is the classification derived from the tags.
	DerivedType string
	// Title is the workshop title, "Unknown" when no metadata was found.
	Title string
}

// Row is one row of the union across all input files.
type Row struct {
	// Mod is the display name (pack filename) of the representative entry.
	Mod string `json:"mod"`
	// WorkshopID is the catalog identifier, empty for local-only mods.
	WorkshopID string `json:"workshop_id"`
	// ParseIssues carries the representative entry's recovery flag.
	ParseIssues int `json:"parse_issues"`
	// WorkshopTags is the joined tag list.
	WorkshopTags string `json:"workshop_tags"`
	// DerivedType is the classification label.
	DerivedType string `json:"derived_type"`
	// Presence holds one flag per input file, in file processing order.
	Presence []bool `json:"presence"`
	// SteamLink is the workshop page URL, empty without a workshop id.
	SteamLink string `json:"steam_link"`
}

// Summary aggregates a comparison result.
type Summary struct {
	FilesScanned  int   `json:"files_scanned"`
	UnionCount    int   `json:"union_count"`
	SharedCount   int   `json:"shared_count"`
	UniquePerFile []int `json:"unique_per_file"`
}

// Result is the full output of a multi-file comparison.
type Result struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// TablePage is one rendered slice of the comparison table.
type TablePage struct {
	// Content is the rendered fixed-width table inside a text code fence.
	Content string `json:"content"`
	// PageNumber is the clamped 1-based page number.
	PageNumber int `json:"page_number"`
	// TotalPages is the page count for the effective rows-per-page.
	TotalPages int `json:"total_pages"`
	// StartIndex and EndIndex delimit the rendered row slice [start, end).
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

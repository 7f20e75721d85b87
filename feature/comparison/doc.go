// Package comparison implements the manifest comparison feature.
//
// It reconciles one or more parsed .twmods manifests into a single
// deduplicated table with a presence flag per file:
//  1. Enrichment joins parsed mods with cached workshop metadata and derives
//     a mod type from the tags (priority-ordered substring rules).
//  2. Compare builds the keyed union (workshop id, else pack filename),
//     keeps the first occurrence as the representative, and sorts rows
//     alphabetically for deterministic rendering.
//  3. RenderPage slices the table into fixed-width pages bounded by a hard
//     character budget, backing off the row count when a page measures over.
//  4. A TTL-bounded session store keeps results navigable per user.
//  5. CSV/JSON exporters flatten the full table for download.
//
// # Components
//
//   - Service: orchestrates parse, cache/fetch, diff, render, and sessions.
//   - Handler: exposes HTTP endpoints for uploads, stored-object comparisons,
//     session navigation, and exports.
//   - Feature: registers the feature with the application loader.
//
// # HTTP Endpoints
//
//   - POST /comparison/compare : compare uploaded manifests
//   - POST /comparison/compare-stored : compare manifests from the bucket
//   - POST /comparison/manifests : upload manifests to the bucket
//   - GET /comparison/manifests : list stored manifests
//   - GET /comparison/sessions/:id/page : navigate a pagination session
//   - GET /comparison/sessions/:id/export/csv : full-table CSV export
//   - GET /comparison/sessions/:id/export/json : full-table JSON export
package comparison

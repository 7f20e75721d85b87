// Package workshop provides Steam Workshop metadata for mods: a batch API
// client and a durable TTL cache in front of it.
//
// # Cache
//
// Metadata is persisted per workshop id in the 'workshop_cache' table.
// Freshness is judged at read time by IsValid: records for recently updated
// items expire after 12 hours, everything else after 7 days. Expired rows are
// logically evicted (reported absent) but never deleted; the next successful
// fetch overwrites them. Batch writes run in one transaction so the catalog
// is never half-written.
//
// # Client
//
// The Client wraps the GetPublishedFileDetails endpoint. Fetches are batched
// (one POST per id set) and deduplicated across concurrent callers via
// singleflight. A failed fetch is reported as an error and callers degrade to
// cache-only enrichment.
package workshop

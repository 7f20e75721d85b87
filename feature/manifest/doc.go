// Package manifest parses .twmods mod-list manifest files.
//
// A manifest is a line-oriented text format where each line records one
// installed mod's identity and provenance:
//
//	mod_lookup_key://<hash>@steam_workshop:<app_id>/<workshop_id>@<timestamp>/<name>.pack
//
// Parsing is total: malformed lines degrade to partially recovered entries
// instead of being dropped, so downstream comparison always sees every mod
// the file mentions.
package manifest

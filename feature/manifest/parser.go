package manifest

import (
	"regexp"
	"strconv"
	"strings"
)

// Mod is one parsed manifest line describing a single installed mod.
type Mod struct {
	// PackFilename is the trailing path segment ending in ".pack".
	PackFilename string
	// WorkshopID is the numeric Steam Workshop identifier, empty when the
	// line carried none.
	WorkshopID string
	// AppID is the numeric Steam application identifier.
	AppID string
	// TimestampUnix is the subscription timestamp, 0 when absent.
	TimestampUnix int64
	// LookupHash is the hash segment of the lookup key scheme.
	LookupHash string
	// ParseIssues is 1 when the line was structurally malformed and only
	// partially recovered, 0 for a clean parse.
	ParseIssues int
	// OriginalLine preserves the raw trimmed line for diagnostics.
	OriginalLine string
}

// Result is the outcome of parsing one manifest file.
type Result struct {
	Mods        []Mod
	TotalLines  int
	ParsedLines int
	ErrorLines  int
}

// Line format:
//
//	mod_lookup_key://<hash>@steam_workshop:<app_id>/<workshop_id>@<timestamp>/<pack_filename>.pack
var (
	packRe        = regexp.MustCompile(`/([^/]+\.pack)$`)
	workshopRe    = regexp.MustCompile(`steam_workshop:(\d+)/(\d+)`)
	hashRe        = regexp.MustCompile(`mod_lookup_key://([^@]+)`)
	timestampRe   = regexp.MustCompile(`@(\d+)/`)
	recoverModsRe = regexp.MustCompile(`steam_workshop:\d+/(\d+)`)
)

// Parse parses the content of a .twmods manifest file.
//
// Blank lines and lines starting with '#' are skipped entirely. Every other
// line yields exactly one Mod: lines matching the expected format count as
// parsed, structurally malformed lines are recovered best-effort (filename
// and workshop id re-extracted independently) and count as errors with
// ParseIssues set to 1. Parse never fails.
func Parse(content string) Result {
	lines := strings.Split(content, "\n")

	result := Result{
		Mods:       make([]Mod, 0, len(lines)),
		TotalLines: len(lines),
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Skip blank lines and comments
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		mod := parseLine(trimmed)
		result.Mods = append(result.Mods, mod)
		if mod.ParseIssues > 0 {
			result.ErrorLines++
		} else {
			result.ParsedLines++
		}
	}

	return result
}

// parseLine parses a single trimmed manifest line.
func parseLine(line string) Mod {
	packMatch := packRe.FindStringSubmatch(line)
	if packMatch == nil {
		return recoverLine(line, "")
	}
	packFilename := packMatch[1]

	workshopMatch := workshopRe.FindStringSubmatch(line)
	if workshopMatch == nil {
		return recoverLine(line, packFilename)
	}
	appID := workshopMatch[1]
	workshopID := workshopMatch[2]

	lookupHash := ""
	if hashMatch := hashRe.FindStringSubmatch(line); hashMatch != nil {
		lookupHash = hashMatch[1]
	}

	var timestamp int64
	if tsMatch := timestampRe.FindStringSubmatch(line); tsMatch != nil {
		timestamp, _ = strconv.ParseInt(tsMatch[1], 10, 64)
	}

	return Mod{
		PackFilename:  packFilename,
		WorkshopID:    workshopID,
		AppID:         appID,
		TimestampUnix: timestamp,
		LookupHash:    lookupHash,
		OriginalLine:  line,
	}
}

// recoverLine builds a degraded entry for a line that did not match the
// expected shape, re-extracting whatever fields it can.
func recoverLine(line, packFilename string) Mod {
	if packFilename == "" {
		if packMatch := packRe.FindStringSubmatch(line); packMatch != nil {
			packFilename = packMatch[1]
		} else {
			packFilename = "unknown.pack"
		}
	}

	workshopID := ""
	if idMatch := recoverModsRe.FindStringSubmatch(line); idMatch != nil {
		workshopID = idMatch[1]
	}

	return Mod{
		PackFilename: packFilename,
		WorkshopID:   workshopID,
		ParseIssues:  1,
		OriginalLine: line,
	}
}

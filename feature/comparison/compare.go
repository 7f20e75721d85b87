package comparison

import (
	"sort"
	"strings"

	"twmods/feature/manifest"
	"twmods/feature/workshop"
)

const steamLinkPrefix = "https://steamcommunity.com/sharedfiles/filedetails/?id="

// typeRule is one entry of the classification chain: a predicate over the
// lowercased tag list and a label builder for matches.
type typeRule struct {
	matches func(tags []string) bool
	label   func(tags []string) string
}

// typeRules is evaluated in order; the first matching rule wins regardless of
// how well later rules would describe the mod.
var typeRules = []typeRule{
	{
		matches: containsAny("overhaul"),
		label:   overhaulLabel,
	},
	{
		matches: containsAny("graphics", "visual", "reskin"),
		label:   fixedLabel("Graphical"),
	},
	{
		matches: containsAny("campaign", "immortal empires", "startpos"),
		label:   fixedLabel("Campaign"),
	},
	{
		matches: containsAny("battle", "units", "combat"),
		label:   fixedLabel("Battle"),
	},
	{
		matches: containsAny("ui"),
		label:   fixedLabel("UI"),
	},
}

// DeriveType classifies a mod from its workshop tags. Matching is a
// case-insensitive substring test over a fixed priority order; untaggable
// mods fall through to "Unknown (Workshop)".
func DeriveType(tags []string) string {
	lower := make([]string, len(tags))
	for i, t := range tags {
		lower[i] = strings.ToLower(t)
	}

	for _, rule := range typeRules {
		if rule.matches(lower) {
			return rule.label(lower)
		}
	}

	return "Unknown (Workshop)"
}

func containsAny(subs ...string) func(tags []string) bool {
	return func(tags []string) bool {
		for _, t := range tags {
			for _, sub := range subs {
				if strings.Contains(t, sub) {
					return true
				}
			}
		}
		return false
	}
}

func fixedLabel(label string) func([]string) string {
	return func([]string) string { return label }
}

// overhaulLabel qualifies the Overhaul category by campaign/battle scope.
func overhaulLabel(tags []string) string {
	hasCampaign := containsAny("campaign")(tags)
	hasBattle := containsAny("battle")(tags)

	switch {
	case hasCampaign && hasBattle:
		return "Overhaul (Campaign, Battle)"
	case hasCampaign:
		return "Overhaul (Campaign)"
	case hasBattle:
		return "Overhaul (Battle)"
	default:
		return "Overhaul"
	}
}

// Enrich joins parsed mods with workshop metadata. Entries without a cache
// hit keep empty tags and an "Unknown" title.
func Enrich(mods []manifest.Mod, metadata map[string]workshop.CacheRecord) []EnrichedMod {
	enriched := make([]EnrichedMod, 0, len(mods))

	for _, mod := range mods {
		var tags []string
		title := "Unknown"

		if rec, ok := metadata[mod.WorkshopID]; ok {
			tags = rec.Tags()
			if rec.Title != "" {
				title = rec.Title
			}
		}

		enriched = append(enriched, EnrichedMod{
			Mod:          mod,
			WorkshopTags: tags,
			DerivedType:  DeriveType(tags),
			Title:        title,
		})
	}

	return enriched
}

// Compare reconciles per-file mod lists into one deduplicated table.
//
// Rows are keyed by workshop id when present, else by pack filename; the
// first occurrence of a key provides the representative display fields and
// later files only toggle their presence flag. Rows are ordered by mod name
// (case-insensitive) with workshop id as tie-break, which is the contract
// every renderer and exporter depends on.
func Compare(fileMods [][]manifest.Mod, enrichedMods [][]EnrichedMod) Result {
	fileCount := len(fileMods)

	type unionEntry struct {
		mod      EnrichedMod
		presence []bool
	}

	unionMap := make(map[string]*unionEntry)
	for fileIndex, mods := range enrichedMods {
		for _, mod := range mods {
			key := mod.WorkshopID
			if key == "" {
				key = mod.PackFilename
			}

			if existing, ok := unionMap[key]; ok {
				existing.presence[fileIndex] = true
				continue
			}

			presence := make([]bool, fileCount)
			presence[fileIndex] = true
			unionMap[key] = &unionEntry{mod: mod, presence: presence}
		}
	}

	rows := make([]Row, 0, len(unionMap))
	for _, entry := range unionMap {
		link := ""
		if entry.mod.WorkshopID != "" {
			link = steamLinkPrefix + entry.mod.WorkshopID
		}

		rows = append(rows, Row{
			Mod:          entry.mod.PackFilename,
			WorkshopID:   entry.mod.WorkshopID,
			ParseIssues:  entry.mod.ParseIssues,
			WorkshopTags: strings.Join(entry.mod.WorkshopTags, ", "),
			DerivedType:  entry.mod.DerivedType,
			Presence:     entry.presence,
			SteamLink:    link,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a := strings.ToLower(rows[i].Mod)
		b := strings.ToLower(rows[j].Mod)
		if a != b {
			return a < b
		}
		return rows[i].WorkshopID < rows[j].WorkshopID
	})

	sharedCount := 0
	uniquePerFile := make([]int, fileCount)
	for _, row := range rows {
		present := 0
		lastIndex := -1
		for i, p := range row.Presence {
			if p {
				present++
				lastIndex = i
			}
		}
		if present == fileCount {
			sharedCount++
		}
		if present == 1 {
			uniquePerFile[lastIndex]++
		}
	}

	return Result{
		Rows: rows,
		Summary: Summary{
			FilesScanned:  fileCount,
			UnionCount:    len(rows),
			SharedCount:   sharedCount,
			UniquePerFile: uniquePerFile,
		},
	}
}

package comparison

import (
	"encoding/json"
	"testing"

	"twmods/feature/manifest"
	"twmods/feature/workshop"

	"github.com/stretchr/testify/assert"
)

func TestDeriveType(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		expected string
	}{
		{"plain overhaul", []string{"Overhaul"}, "Overhaul"},
		{"overhaul lowercase with noise", []string{"overhaul", "other"}, "Overhaul"},
		{"overhaul with campaign", []string{"Overhaul", "Campaign"}, "Overhaul (Campaign)"},
		{"overhaul with battle", []string{"Overhaul", "Battle"}, "Overhaul (Battle)"},
		{"overhaul with both", []string{"Overhaul", "Campaign", "Battle"}, "Overhaul (Campaign, Battle)"},
		{"graphics", []string{"Graphics"}, "Graphical"},
		{"visual", []string{"Visual"}, "Graphical"},
		{"reskin", []string{"Reskin"}, "Graphical"},
		{"campaign", []string{"Campaign"}, "Campaign"},
		{"immortal empires", []string{"Immortal Empires"}, "Campaign"},
		{"startpos", []string{"Startpos"}, "Campaign"},
		{"battle", []string{"Battle"}, "Battle"},
		{"units", []string{"Units"}, "Battle"},
		{"combat", []string{"Combat"}, "Battle"},
		{"ui", []string{"UI"}, "UI"},
		{"ui lowercase with noise", []string{"ui", "other"}, "UI"},
		{"no tags", nil, "Unknown (Workshop)"},
		{"unmatched tags", []string{"Random Tag"}, "Unknown (Workshop)"},
		{"overhaul beats graphics", []string{"Overhaul", "Graphics"}, "Overhaul"},
		{"graphics beats campaign", []string{"Graphics", "Campaign"}, "Graphical"},
		{"visual beats battle", []string{"Visual", "Battle"}, "Graphical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveType(tt.tags))
		})
	}
}

func record(id, title string, tags ...string) workshop.CacheRecord {
	tagsJSON, _ := json.Marshal(tags)
	return workshop.CacheRecord{
		WorkshopID: id,
		Title:      title,
		TagsJSON:   string(tagsJSON),
	}
}

func TestEnrich(t *testing.T) {
	mods := []manifest.Mod{
		{PackFilename: "a.pack", WorkshopID: "111"},
		{PackFilename: "b.pack", WorkshopID: "222"},
		{PackFilename: "local.pack"},
	}
	metadata := map[string]workshop.CacheRecord{
		"111": record("111", "Mod A", "Overhaul", "Campaign"),
	}

	enriched := Enrich(mods, metadata)

	assert.Len(t, enriched, 3)
	assert.Equal(t, "Mod A", enriched[0].Title)
	assert.Equal(t, []string{"Overhaul", "Campaign"}, enriched[0].WorkshopTags)
	assert.Equal(t, "Overhaul (Campaign)", enriched[0].DerivedType)

	// Cache miss keeps empty tags and an Unknown title
	assert.Equal(t, "Unknown", enriched[1].Title)
	assert.Empty(t, enriched[1].WorkshopTags)
	assert.Equal(t, "Unknown (Workshop)", enriched[1].DerivedType)

	// Entries without a workshop id never match metadata
	assert.Equal(t, "Unknown", enriched[2].Title)
}

func modsOf(entries ...manifest.Mod) []manifest.Mod {
	return entries
}

func enrichAll(fileMods [][]manifest.Mod, metadata map[string]workshop.CacheRecord) [][]EnrichedMod {
	enriched := make([][]EnrichedMod, 0, len(fileMods))
	for _, mods := range fileMods {
		enriched = append(enriched, Enrich(mods, metadata))
	}
	return enriched
}

func TestCompare_TwoFileScenario(t *testing.T) {
	fileA := modsOf(manifest.Mod{PackFilename: "X.pack", WorkshopID: "111"})
	fileB := modsOf(
		manifest.Mod{PackFilename: "X.pack", WorkshopID: "111"},
		manifest.Mod{PackFilename: "Y.pack", WorkshopID: "222"},
	)

	fileMods := [][]manifest.Mod{fileA, fileB}
	result := Compare(fileMods, enrichAll(fileMods, nil))

	assert.Len(t, result.Rows, 2)
	assert.Equal(t, "X.pack", result.Rows[0].Mod)
	assert.Equal(t, []bool{true, true}, result.Rows[0].Presence)
	assert.Equal(t, "Y.pack", result.Rows[1].Mod)
	assert.Equal(t, []bool{false, true}, result.Rows[1].Presence)

	assert.Equal(t, 2, result.Summary.FilesScanned)
	assert.Equal(t, 2, result.Summary.UnionCount)
	assert.Equal(t, 1, result.Summary.SharedCount)
	assert.Equal(t, []int{0, 1}, result.Summary.UniquePerFile)
}

func TestCompare_RepresentativeFieldsFromFirstOccurrence(t *testing.T) {
	metadata := map[string]workshop.CacheRecord{
		"111": record("111", "Mod A", "Overhaul"),
	}

	fileA := modsOf(manifest.Mod{PackFilename: "first_name.pack", WorkshopID: "111"})
	fileB := modsOf(manifest.Mod{PackFilename: "renamed_later.pack", WorkshopID: "111", ParseIssues: 1})

	fileMods := [][]manifest.Mod{fileA, fileB}
	result := Compare(fileMods, enrichAll(fileMods, metadata))

	assert.Len(t, result.Rows, 1)
	// Later files only toggle presence; display fields stay from file A
	assert.Equal(t, "first_name.pack", result.Rows[0].Mod)
	assert.Equal(t, 0, result.Rows[0].ParseIssues)
	assert.Equal(t, []bool{true, true}, result.Rows[0].Presence)
}

func TestCompare_KeyFallbackToFilename(t *testing.T) {
	// Same display name but different workshop ids: distinct rows.
	fileA := modsOf(manifest.Mod{PackFilename: "same.pack", WorkshopID: "111"})
	fileB := modsOf(manifest.Mod{PackFilename: "same.pack", WorkshopID: "222"})

	fileMods := [][]manifest.Mod{fileA, fileB}
	result := Compare(fileMods, enrichAll(fileMods, nil))

	assert.Len(t, result.Rows, 2)
	assert.Equal(t, "111", result.Rows[0].WorkshopID)
	assert.Equal(t, "222", result.Rows[1].WorkshopID)

	// Without ids, the filename is the key and the rows merge.
	fileA = modsOf(manifest.Mod{PackFilename: "local.pack"})
	fileB = modsOf(manifest.Mod{PackFilename: "local.pack"})

	fileMods = [][]manifest.Mod{fileA, fileB}
	result = Compare(fileMods, enrichAll(fileMods, nil))

	assert.Len(t, result.Rows, 1)
	assert.Equal(t, []bool{true, true}, result.Rows[0].Presence)
	assert.Equal(t, "", result.Rows[0].SteamLink)
}

func TestCompare_Ordering(t *testing.T) {
	fileA := modsOf(
		manifest.Mod{PackFilename: "zeta.pack", WorkshopID: "1"},
		manifest.Mod{PackFilename: "Alpha.pack", WorkshopID: "2"},
		manifest.Mod{PackFilename: "beta.pack", WorkshopID: "3"},
		manifest.Mod{PackFilename: "beta.pack", WorkshopID: "10"},
	)

	fileMods := [][]manifest.Mod{fileA}
	result := Compare(fileMods, enrichAll(fileMods, nil))

	// Case-insensitive by name, workshop id breaks the tie lexicographically
	assert.Equal(t, "Alpha.pack", result.Rows[0].Mod)
	assert.Equal(t, "10", result.Rows[1].WorkshopID)
	assert.Equal(t, "3", result.Rows[2].WorkshopID)
	assert.Equal(t, "zeta.pack", result.Rows[3].Mod)
}

func TestCompare_InvariantToFileOrder(t *testing.T) {
	fileA := modsOf(
		manifest.Mod{PackFilename: "a.pack", WorkshopID: "1"},
		manifest.Mod{PackFilename: "b.pack", WorkshopID: "2"},
	)
	fileB := modsOf(
		manifest.Mod{PackFilename: "b.pack", WorkshopID: "2"},
		manifest.Mod{PackFilename: "c.pack", WorkshopID: "3"},
	)

	forward := [][]manifest.Mod{fileA, fileB}
	reversed := [][]manifest.Mod{fileB, fileA}

	resultForward := Compare(forward, enrichAll(forward, nil))
	resultReversed := Compare(reversed, enrichAll(reversed, nil))

	assert.Equal(t, resultForward.Summary.UnionCount, resultReversed.Summary.UnionCount)
	assert.Equal(t, resultForward.Summary.SharedCount, resultReversed.Summary.SharedCount)
	assert.ElementsMatch(t, resultForward.Summary.UniquePerFile, resultReversed.Summary.UniquePerFile)

	for i := range resultForward.Rows {
		fw := resultForward.Rows[i]
		rv := resultReversed.Rows[i]
		assert.Equal(t, fw.Mod, rv.Mod)
		// Presence indices swap with the file order
		assert.Equal(t, fw.Presence[0], rv.Presence[1])
		assert.Equal(t, fw.Presence[1], rv.Presence[0])
	}
}

func TestCompare_PresenceLengthAlwaysMatchesFileCount(t *testing.T) {
	fileMods := [][]manifest.Mod{
		modsOf(manifest.Mod{PackFilename: "a.pack", WorkshopID: "1"}),
		modsOf(),
		modsOf(manifest.Mod{PackFilename: "b.pack", WorkshopID: "2"}),
	}

	result := Compare(fileMods, enrichAll(fileMods, nil))

	for _, row := range result.Rows {
		assert.Len(t, row.Presence, 3)
	}
	assert.Equal(t, []int{1, 0, 1}, result.Summary.UniquePerFile)
	assert.Equal(t, 0, result.Summary.SharedCount)
}

func TestCompare_SteamLink(t *testing.T) {
	fileMods := [][]manifest.Mod{modsOf(manifest.Mod{PackFilename: "a.pack", WorkshopID: "123456789"})}

	result := Compare(fileMods, enrichAll(fileMods, nil))

	assert.Equal(t, "https://steamcommunity.com/sharedfiles/filedetails/?id=123456789", result.Rows[0].SteamLink)
}

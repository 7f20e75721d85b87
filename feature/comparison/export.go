package comparison

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

// ExportRow is the stable JSON export shape; field names are part of the
// consumer contract and must not change between versions.
type ExportRow struct {
	Mod        string `json:"mod"`
	WorkshopID string `json:"workshop_id"`
	Presence   []bool `json:"presence"`
}

// GenerateCSV flattens the comparison table to CSV in table order: one
// header row, then one record per row with Yes/No presence columns per file.
func GenerateCSV(rows []Row, fileNames []string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"Mod", "Workshop ID", "Parse Issues", "Workshop Tags", "Derived Type"}
	for i := range fileNames {
		header = append(header, fmt.Sprintf("File %d", i+1))
	}
	header = append(header, "Steam Workshop Link")
	_ = w.Write(header)

	for _, row := range rows {
		record := []string{
			row.Mod,
			row.WorkshopID,
			fmt.Sprintf("%d", row.ParseIssues),
			row.WorkshopTags,
			row.DerivedType,
		}
		for _, present := range row.Presence {
			if present {
				record = append(record, "Yes")
			} else {
				record = append(record, "No")
			}
		}
		record = append(record, row.SteamLink)
		_ = w.Write(record)
	}

	w.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

// GenerateJSON flattens the comparison table to a JSON array of export rows.
func GenerateJSON(rows []Row) ([]byte, error) {
	export := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		export = append(export, ExportRow{
			Mod:        row.Mod,
			WorkshopID: row.WorkshopID,
			Presence:   row.Presence,
		})
	}

	return json.MarshalIndent(export, "", "  ")
}

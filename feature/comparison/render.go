package comparison

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// maxMessageLength is the output budget used to derive rows per page,
	// leaving room for the summary block and decoration.
	maxMessageLength = 1800
	// maxTableLength is the hard ceiling a rendered page must never exceed.
	maxTableLength = 1850
	// maxRowsPerPage caps the derived page size.
	maxRowsPerPage = 30

	tableTitle  = "All Mods — Comparison Table (alphabetical)"
	presentMark = "✅"
	absentMark  = "❌"
)

// RenderPage renders one page of the comparison table as fixed-width text
// inside a code fence.
//
// When rowsPerPage is 0 the page size is derived from the output budget
// using a sample row. pageNumber is clamped into [1, totalPages]. If the
// rendered page still exceeds the hard ceiling, the row count is corrected
// once from the measured first-row width and the page is rebuilt with
// adjusted pagination counts; the footer is never dropped.
func RenderPage(rows []Row, fileNames []string, pageNumber, rowsPerPage int) TablePage {
	totalRows := len(rows)

	if rowsPerPage <= 0 {
		rowsPerPage = calculateRowsPerPage(rows, fileNames)
	}

	totalPages := (totalRows + rowsPerPage - 1) / rowsPerPage
	if totalPages < 1 {
		totalPages = 1
	}

	currentPage := pageNumber
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	startIndex := (currentPage - 1) * rowsPerPage
	endIndex := startIndex + rowsPerPage
	if endIndex > totalRows {
		endIndex = totalRows
	}
	pageRows := rows[startIndex:endIndex]

	header := buildHeader(fileNames)
	content := buildTable(header, pageRows, currentPage, totalPages, startIndex, endIndex, totalRows)

	// Safety valve: correct the row count once from the measured first-row
	// width if the page still exceeds the hard ceiling.
	if runeLen(content) > maxTableLength {
		rowWidth := 150
		if len(pageRows) > 0 {
			rowWidth = runeLen(formatRow(pageRows[0])) + 1
		}

		footer := paginationFooter(currentPage, totalPages, startIndex, endIndex, totalRows)
		decoration := runeLen(tableTitle) + runeLen(header) + runeLen(footer) + 3*101 + 12 + 4

		maxRows := (maxTableLength - decoration) / rowWidth
		if maxRows < 1 {
			maxRows = 1
		}

		if maxRows < len(pageRows) {
			pageRows = pageRows[:maxRows]
			endIndex = startIndex + maxRows
			content = buildTable(header, pageRows, currentPage, totalPages, startIndex, endIndex, totalRows)
		}
	}

	return TablePage{
		Content:    content,
		PageNumber: currentPage,
		TotalPages: totalPages,
		StartIndex: startIndex,
		EndIndex:   endIndex,
	}
}

func buildTable(header string, pageRows []Row, currentPage, totalPages, startIndex, endIndex, totalRows int) string {
	lines := make([]string, 0, len(pageRows)+6)
	lines = append(lines, tableTitle)
	lines = append(lines, strings.Repeat("═", 100))
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", 100))

	for _, row := range pageRows {
		lines = append(lines, formatRow(row))
	}

	lines = append(lines, strings.Repeat("─", 100))
	lines = append(lines, paginationFooter(currentPage, totalPages, startIndex, endIndex, totalRows))

	return "```text\n" + strings.Join(lines, "\n") + "\n```"
}

func paginationFooter(currentPage, totalPages, startIndex, endIndex, totalRows int) string {
	return fmt.Sprintf("Page %d/%d (%d-%d of %d)", currentPage, totalPages, startIndex+1, endIndex, totalRows)
}

func buildHeader(fileNames []string) string {
	parts := []string{
		padEnd("Mod", 40),
		padEnd("Workshop ID", 15),
		padEnd("Issues", 7),
		padEnd("Tags", 20),
		padEnd("Type", 20),
	}

	for i := range fileNames {
		parts = append(parts, padEnd(fmt.Sprintf("File %d", i+1), 10))
	}

	parts = append(parts, padEnd("Link", 50))

	return strings.Join(parts, " | ")
}

func formatRow(row Row) string {
	parts := []string{
		padEnd(truncate(row.Mod, 38), 40),
		padEnd(truncate(row.WorkshopID, 13), 15),
		padEnd(fmt.Sprintf("%d", row.ParseIssues), 7),
		padEnd(truncate(row.WorkshopTags, 18), 20),
		padEnd(truncate(row.DerivedType, 18), 20),
	}

	for _, present := range row.Presence {
		mark := absentMark
		if present {
			mark = presentMark
		}
		parts = append(parts, padEnd(mark, 10))
	}

	parts = append(parts, padEnd(truncate(row.SteamLink, 48), 50))

	return strings.Join(parts, " | ")
}

// calculateRowsPerPage derives the page size from the output budget using a
// representative row, clamped to [1, maxRowsPerPage].
func calculateRowsPerPage(rows []Row, fileNames []string) int {
	sample := sampleRow(fileNames)
	if len(rows) > 0 {
		sample = rows[0]
	}
	rowWidth := runeLen(formatRow(sample)) + 1

	// Header plus footer, code fence markers, summary block, and spacing.
	headerWidth := runeLen(buildHeader(fileNames)) + 1
	overhead := headerWidth + 50 + 20 + 100 + 18

	available := maxMessageLength - overhead
	rowsPerPage := available / rowWidth
	if rowsPerPage < 1 {
		rowsPerPage = 1
	}
	if rowsPerPage > maxRowsPerPage {
		rowsPerPage = maxRowsPerPage
	}

	return rowsPerPage
}

func sampleRow(fileNames []string) Row {
	return Row{
		Mod:          "sample_mod.pack",
		WorkshopID:   "123456789",
		WorkshopTags: "Sample, Tags",
		DerivedType:  "Campaign",
		Presence:     make([]bool, len(fileNames)),
		SteamLink:    steamLinkPrefix + "123456789",
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

func padEnd(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

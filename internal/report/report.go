// Package report renders engine output as deterministic markdown text.
// Everything here is pure string assembly: no I/O, no failure modes.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/prospect/internal/domain"
)

const (
	rule = "================================================================================" // 80 chars

	chunkExcerptLen  = 150
	chunksPerCompany = 2

	noDataPlaceholder = "No data to display"
)

// SearchResults renders a ranked company list with top chunk excerpts.
// Zero matches produce a single "no matching companies" line.
func SearchResults(matches []domain.CompanyMatch, query string) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No matching companies found for '%s'", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Found %d matching companies:\n\n", len(matches))

	for i, m := range matches {
		fmt.Fprintf(&b, "## Result #%d: %s\n", i+1, m.CompanyName)
		fmt.Fprintf(&b, "Company ID: %s\n", m.CompanyID)
		fmt.Fprintf(&b, "Industry: %s\n", orNA(m.Industry))
		fmt.Fprintf(&b, "Match Score: %.2f%%\n\n", m.Score*100)

		b.WriteString("### Matching content:\n")
		for j, chunk := range m.Chunks {
			if j >= chunksPerCompany {
				break
			}
			fmt.Fprintf(&b, "• %s...\n\n", truncate(chunk.Content, chunkExcerptLen))
		}

		fmt.Fprintf(&b, "To see full details, use the company details endpoint with company_id: %s\n\n", m.CompanyID)
		b.WriteString("---\n\n")
	}

	b.WriteString("To view full details of a company, use the company details endpoint with the company ID.")
	return b.String()
}

// CompanyDetail renders a full company record as a fixed-layout report.
func CompanyDetail(rec domain.CompanyRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# COMPANY DETAILS: %s\n", rec.Name)
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Company ID: %s\n", rec.ID)
	fmt.Fprintf(&b, "Industry: %s\n", orNA(rec.Industry))
	fmt.Fprintf(&b, "Website: %s\n", orNA(rec.Website))
	fmt.Fprintf(&b, "Business Model: %s\n", orNA(rec.BusinessModel))
	fmt.Fprintf(&b, "Location: %s\n\n", orNA(rec.Location))

	b.WriteString("## Description\n")
	if rec.Description != "" {
		b.WriteString(rec.Description + "\n\n")
	} else {
		b.WriteString("No description available.\n\n")
	}

	b.WriteString("## Contacts\n")
	if len(rec.Contacts) == 0 {
		b.WriteString("No contacts available.\n")
	} else {
		for _, c := range rec.Contacts {
			fmt.Fprintf(&b, "• %s %s\n", c.FirstName, c.LastName)
			fmt.Fprintf(&b, "  Position: %s\n", orNA(c.Designation))
			fmt.Fprintf(&b, "  Email: %s\n", orNA(c.Email))
			fmt.Fprintf(&b, "  Phone: %s %s\n\n", c.PhoneCountryCode, orNA(c.PhoneNumber))
		}
	}

	b.WriteString(rule + "\n")
	return b.String()
}

// Rows renders a query result as a markdown table in column order.
// Nil cells render empty; structured values render as compact JSON;
// pipes inside cells are escaped so they cannot corrupt the table.
func Rows(rs domain.RowSet) string {
	if len(rs.Rows) == 0 || len(rs.Columns) == 0 {
		return noDataPlaceholder
	}

	var b strings.Builder

	b.WriteString("| " + strings.Join(rs.Columns, " | ") + " |\n")
	seps := make([]string, len(rs.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")

	for _, row := range rs.Rows {
		cells := make([]string, len(rs.Columns))
		for i := range rs.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			cells[i] = escapeCell(stringifyCell(v))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return b.String()
}

// TableList renders the available tables.
func TableList(tables []string) string {
	var b strings.Builder
	b.WriteString("# Database Schema\n\n")
	b.WriteString("## Available Tables\n\n")

	if len(tables) == 0 {
		b.WriteString("No tables found in the database.")
		return b.String()
	}
	for _, t := range tables {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	return b.String()
}

// TableSchema renders one table's columns as a markdown table.
func TableSchema(ts domain.TableSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Table: %s\n\n", ts.Name)
	b.WriteString("## Schema\n\n")
	b.WriteString("| Column | Type | Nullable | Default |\n")
	b.WriteString("| ------ | ---- | -------- | ------- |\n")

	if len(ts.Columns) == 0 {
		b.WriteString("| No columns found | | | |\n")
		return b.String()
	}

	for _, c := range ts.Columns {
		nullable := "NO"
		if c.Nullable {
			nullable = "YES"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escapeCell(c.Name), escapeCell(c.DataType), nullable, escapeCell(c.Default))
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func stringifyCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	// newlines inside a cell would break the row
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

package report

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/prospect/internal/domain"
)

func TestSearchResults_Empty(t *testing.T) {
	got := SearchResults(nil, "fintech lending")
	want := "No matching companies found for 'fintech lending'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSearchResults_RankedReport(t *testing.T) {
	matches := []domain.CompanyMatch{
		{
			CompanyID:   "a",
			CompanyName: "Alpha Lending",
			Industry:    "Fintech",
			Rank:        1,
			Score:       0.9,
			Chunks: []domain.ChunkMatch{
				{Content: "Alpha provides working capital loans.", Similarity: 0.9},
				{Content: "Alpha serves small merchants.", Similarity: 0.7},
				{Content: "A third chunk that must not be shown.", Similarity: 0.6},
			},
		},
		{
			CompanyID:   "b",
			CompanyName: "Beta Credit",
			Rank:        2,
			Score:       0.5,
			Chunks: []domain.ChunkMatch{
				{Content: "Beta scores consumer credit.", Similarity: 0.5},
			},
		},
	}

	got := SearchResults(matches, "fintech lending")

	for _, want := range []string{
		"# Found 2 matching companies:",
		"## Result #1: Alpha Lending",
		"Company ID: a",
		"Industry: Fintech",
		"Match Score: 90.00%",
		"## Result #2: Beta Credit",
		"Industry: N/A",
		"Match Score: 50.00%",
		"• Alpha provides working capital loans....",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q\n---\n%s", want, got)
		}
	}

	if strings.Contains(got, "third chunk") {
		t.Error("more than 2 chunks rendered for one company")
	}
	if strings.Index(got, "Result #1") > strings.Index(got, "Result #2") {
		t.Error("companies rendered out of rank order")
	}
}

func TestSearchResults_TruncatesLongChunks(t *testing.T) {
	long := strings.Repeat("x", 400)
	matches := []domain.CompanyMatch{{
		CompanyID:   "a",
		CompanyName: "Alpha",
		Score:       0.5,
		Chunks:      []domain.ChunkMatch{{Content: long, Similarity: 0.5}},
	}}

	got := SearchResults(matches, "q")
	if strings.Contains(got, strings.Repeat("x", 151)) {
		t.Error("chunk content not truncated to 150 characters")
	}
	if !strings.Contains(got, strings.Repeat("x", 150)+"...") {
		t.Error("truncated chunk should end with ellipsis")
	}
}

func TestCompanyDetail_FullRecord(t *testing.T) {
	rec := domain.CompanyRecord{
		ID:            "c1",
		Name:          "Acme Corp",
		Industry:      "Manufacturing",
		Website:       "https://acme.example",
		BusinessModel: "B2B",
		Location:      "Berlin",
		Description:   "Makes everything.",
		Contacts: []domain.Contact{{
			FirstName:        "Ada",
			LastName:         "Lovelace",
			Designation:      "CTO",
			Email:            "ada@acme.example",
			PhoneCountryCode: "+49",
			PhoneNumber:      "3012345",
		}},
	}

	got := CompanyDetail(rec)

	for _, want := range []string{
		"# COMPANY DETAILS: Acme Corp",
		"Company ID: c1",
		"Industry: Manufacturing",
		"Website: https://acme.example",
		"Business Model: B2B",
		"Location: Berlin",
		"## Description\nMakes everything.",
		"• Ada Lovelace",
		"Position: CTO",
		"Email: ada@acme.example",
		"Phone: +49 3012345",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("detail report missing %q\n---\n%s", want, got)
		}
	}

	if n := strings.Count(got, strings.Repeat("=", 80)); n != 2 {
		t.Errorf("expected 2 rules of 80 '=', got %d", n)
	}
}

func TestCompanyDetail_MissingFieldsAndNoContacts(t *testing.T) {
	got := CompanyDetail(domain.CompanyRecord{ID: "c2", Name: "Bare Inc"})

	for _, want := range []string{
		"Industry: N/A",
		"Website: N/A",
		"Business Model: N/A",
		"Location: N/A",
		"No description available.",
		"No contacts available.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("detail report missing %q", want)
		}
	}
	if strings.Contains(got, "Position:") {
		t.Error("contacts body rendered despite empty contact list")
	}
}

func TestRows_Empty(t *testing.T) {
	if got := Rows(domain.RowSet{}); got != "No data to display" {
		t.Errorf("got %q", got)
	}
}

func TestRows_NilCellRendersEmpty(t *testing.T) {
	rs := domain.RowSet{
		Columns: []string{"a", "b"},
		Rows:    [][]any{{int64(1), nil}},
	}

	got := Rows(rs)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header+separator+1 row, got %d lines:\n%s", len(lines), got)
	}
	if lines[0] != "| a | b |" {
		t.Errorf("header: %q", lines[0])
	}
	if lines[2] != "| 1 |  |" {
		t.Errorf("row with nil cell: %q", lines[2])
	}
}

func TestRows_EscapesPipes(t *testing.T) {
	rs := domain.RowSet{
		Columns: []string{"name"},
		Rows:    [][]any{{"a|b"}},
	}

	got := Rows(rs)
	if !strings.Contains(got, `a\|b`) {
		t.Errorf("pipe not escaped:\n%s", got)
	}
}

func TestRows_StringifiesStructuredValues(t *testing.T) {
	rs := domain.RowSet{
		Columns: []string{"meta"},
		Rows:    [][]any{{map[string]any{"k": "v"}}},
	}

	got := Rows(rs)
	if !strings.Contains(got, `{"k":"v"}`) {
		t.Errorf("structured value not JSON-encoded:\n%s", got)
	}
}

func TestTableList(t *testing.T) {
	got := TableList([]string{"companies", "contacts"})
	if !strings.Contains(got, "- companies") || !strings.Contains(got, "- contacts") {
		t.Errorf("table list incomplete:\n%s", got)
	}

	empty := TableList(nil)
	if !strings.Contains(empty, "No tables found") {
		t.Errorf("empty list placeholder missing:\n%s", empty)
	}
}

func TestTableSchema(t *testing.T) {
	ts := domain.TableSchema{
		Name: "companies",
		Columns: []domain.ColumnInfo{
			{Name: "id", DataType: "uuid", Nullable: false},
			{Name: "industry", DataType: "text", Nullable: true, Default: "'N/A'::text"},
		},
	}

	got := TableSchema(ts)
	for _, want := range []string{
		"# Table: companies",
		"| id | uuid | NO |  |",
		"| industry | text | YES | 'N/A'::text |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("schema report missing %q\n---\n%s", want, got)
		}
	}

	empty := TableSchema(domain.TableSchema{Name: "ghost"})
	if !strings.Contains(empty, "No columns found") {
		t.Errorf("empty schema placeholder missing:\n%s", empty)
	}
}

package domain

// UnknownCompanyName is the placeholder used when a chunk row carries no company name.
const UnknownCompanyName = "Unknown Company"

// ChunkMatch is a single similarity hit: one stored text chunk that matched the query.
type ChunkMatch struct {
	CompanyID   string
	CompanyName string
	Industry    string
	Content     string
	Similarity  float64 // [0,1], higher is more relevant
}

// CompanyMatch aggregates all chunk hits belonging to one company.
//
// Score equals the similarity of the company's best chunk; Chunks are ordered
// by descending similarity; Rank is the 1-based position in the result set.
type CompanyMatch struct {
	CompanyID   string
	CompanyName string
	Industry    string
	Rank        int
	Score       float64
	Chunks      []ChunkMatch
}

// Contact is a person attached to a company record. Any field may be empty.
type Contact struct {
	FirstName        string
	LastName         string
	Designation      string
	Email            string
	PhoneCountryCode string
	PhoneNumber      string
}

// CompanyRecord is the full entity behind a CompanyMatch, owned by the record store.
type CompanyRecord struct {
	ID            string
	Name          string
	Industry      string
	Website       string
	BusinessModel string
	Location      string
	Description   string
	Contacts      []Contact
}

// RowSet is a generic query result with a stable column order.
// Cell values may be nil; non-string values are stringified by the report layer.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// ColumnInfo describes one column of a database table.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
	Default  string
}

// TableSchema describes a table and its columns.
type TableSchema struct {
	Name    string
	Columns []ColumnInfo
}

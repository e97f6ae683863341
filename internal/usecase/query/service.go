package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/prospect/internal/domain"
)

// Executor runs a pre-validated query against the database.
type Executor interface {
	ReadQuery(ctx context.Context, query string) (domain.RowSet, error)
	Tables(ctx context.Context) ([]string, error)
	TableSchema(ctx context.Context, table string) (domain.TableSchema, error)
}

// Service guards ad-hoc SQL: only SELECT (or WITH ... SELECT) statements run,
// and a LIMIT is appended when the statement carries none.
type Service struct {
	exec         Executor
	defaultLimit int
	maxLimit     int
}

// New creates a read-only query service.
func New(exec Executor, defaultLimit, maxLimit int) *Service {
	return &Service{exec: exec, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

var withSelectRegex = regexp.MustCompile(`^with\s+.+\s+select`)

// modification keywords rejected anywhere in the statement
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "create", "truncate", "grant", "revoke",
}

// Execute validates, bounds and runs the query.
func (s *Service) Execute(ctx context.Context, query string, limit int) (domain.RowSet, error) {
	if !isReadOnly(query) {
		return domain.RowSet{}, domain.ErrQueryNotReadOnly
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	bounded := query
	if !strings.Contains(strings.ToLower(query), "limit ") {
		bounded = fmt.Sprintf("%s LIMIT %d", strings.TrimRight(query, "; \t\n"), limit)
	}

	return s.exec.ReadQuery(ctx, bounded)
}

// Tables lists the public tables.
func (s *Service) Tables(ctx context.Context) ([]string, error) {
	return s.exec.Tables(ctx)
}

// TableSchema describes one table's columns.
func (s *Service) TableSchema(ctx context.Context, table string) (domain.TableSchema, error) {
	return s.exec.TableSchema(ctx, table)
}

// isReadOnly accepts SELECT and WITH...SELECT statements that contain no
// modification keywords. This is a guard, not a SQL parser: the database
// role used by the pool should be read-only regardless.
func isReadOnly(query string) bool {
	cleaned := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(query))), " ")

	isSelect := strings.HasPrefix(cleaned, "select ") || withSelectRegex.MatchString(cleaned)
	if !isSelect {
		return false
	}

	for _, kw := range forbiddenKeywords {
		if strings.Contains(cleaned, kw) {
			return false
		}
	}
	return true
}

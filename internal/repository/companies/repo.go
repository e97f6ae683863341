package companies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/kailas-cloud/prospect/internal/domain"
)

// Repo reads company records and runs read-only queries against Postgres.
type Repo struct {
	db *sqlx.DB
}

// Config holds Postgres connection settings.
type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// New opens a Postgres connection pool.
func New(cfg Config) (*Repo, error) {
	dbx, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	dbx.SetMaxOpenConns(cfg.MaxOpenConns)
	dbx.SetMaxIdleConns(cfg.MaxIdleConns)
	return &Repo{db: dbx}, nil
}

// NewWithDB wraps an existing connection (used by tests and the indexer).
func NewWithDB(dbx *sqlx.DB) *Repo {
	return &Repo{db: dbx}
}

// Ping checks database availability.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the connection pool.
func (r *Repo) Close() error {
	return r.db.Close()
}

type companyRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"company_name"`
	Industry      sql.NullString `db:"industry"`
	Website       sql.NullString `db:"website"`
	BusinessModel sql.NullString `db:"business_model"`
	Location      sql.NullString `db:"location"`
	Description   sql.NullString `db:"description"`
}

type contactRow struct {
	FirstName        sql.NullString `db:"first_name"`
	LastName         sql.NullString `db:"last_name"`
	Designation      sql.NullString `db:"designation"`
	Email            sql.NullString `db:"email"`
	PhoneCountryCode sql.NullString `db:"phone_country_code"`
	PhoneNumber      sql.NullString `db:"phone_number"`
}

// Fetch returns a company with its contacts, or domain.ErrCompanyNotFound.
// The passed context carries the caller's deadline; pq honors cancellation.
func (r *Repo) Fetch(ctx context.Context, id string) (domain.CompanyRecord, error) {
	var row companyRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, company_name, industry, website, business_model, location, description
		 FROM companies WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CompanyRecord{}, domain.ErrCompanyNotFound
		}
		if ctx.Err() != nil {
			return domain.CompanyRecord{}, ctx.Err()
		}
		return domain.CompanyRecord{}, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
	}

	var contacts []contactRow
	err = r.db.SelectContext(ctx, &contacts,
		`SELECT first_name, last_name, designation, email, phone_country_code, phone_number
		 FROM contacts WHERE company_id = $1 ORDER BY last_name, first_name`, id)
	if err != nil {
		if ctx.Err() != nil {
			return domain.CompanyRecord{}, ctx.Err()
		}
		return domain.CompanyRecord{}, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
	}

	rec := domain.CompanyRecord{
		ID:            row.ID,
		Name:          row.Name,
		Industry:      row.Industry.String,
		Website:       row.Website.String,
		BusinessModel: row.BusinessModel.String,
		Location:      row.Location.String,
		Description:   row.Description.String,
		Contacts:      make([]domain.Contact, 0, len(contacts)),
	}
	for _, c := range contacts {
		rec.Contacts = append(rec.Contacts, domain.Contact{
			FirstName:        c.FirstName.String,
			LastName:         c.LastName.String,
			Designation:      c.Designation.String,
			Email:            c.Email.String,
			PhoneCountryCode: c.PhoneCountryCode.String,
			PhoneNumber:      c.PhoneNumber.String,
		})
	}

	return rec, nil
}

// ReadQuery executes an arbitrary query and returns rows in column order.
// The caller is responsible for having validated the query as read-only.
func (r *Repo) ReadQuery(ctx context.Context, query string) (domain.RowSet, error) {
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return domain.RowSet{}, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return domain.RowSet{}, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
	}

	rs := domain.RowSet{Columns: cols}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return domain.RowSet{}, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
		}
		for i, v := range vals {
			// pq returns text columns as []byte; normalize to string for rendering.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return domain.RowSet{}, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
	}

	return rs, nil
}

// Tables lists tables in the public schema.
func (r *Repo) Tables(ctx context.Context) ([]string, error) {
	var tables []string
	err := r.db.SelectContext(ctx, &tables,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
	}
	return tables, nil
}

// TableSchema describes the columns of one public table.
func (r *Repo) TableSchema(ctx context.Context, table string) (domain.TableSchema, error) {
	type colRow struct {
		Name     string         `db:"column_name"`
		DataType string         `db:"data_type"`
		Nullable string         `db:"is_nullable"`
		Default  sql.NullString `db:"column_default"`
	}

	var cols []colRow
	err := r.db.SelectContext(ctx, &cols,
		`SELECT column_name, data_type, is_nullable, column_default
		 FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = $1
		 ORDER BY ordinal_position`, table)
	if err != nil {
		return domain.TableSchema{}, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
	}

	ts := domain.TableSchema{Name: table, Columns: make([]domain.ColumnInfo, 0, len(cols))}
	for _, c := range cols {
		ts.Columns = append(ts.Columns, domain.ColumnInfo{
			Name:     c.Name,
			DataType: c.DataType,
			Nullable: strings.EqualFold(c.Nullable, "YES"),
			Default:  c.Default.String,
		})
	}
	return ts, nil
}

// CompanyForIndexing is the source row for the chunk indexing pipeline.
type CompanyForIndexing struct {
	ID          string         `db:"id"`
	Name        string         `db:"company_name"`
	Industry    sql.NullString `db:"industry"`
	Description sql.NullString `db:"description"`
}

// AllForIndexing streams every company with a non-empty description.
func (r *Repo) AllForIndexing(ctx context.Context) ([]CompanyForIndexing, error) {
	var out []CompanyForIndexing
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, company_name, industry, description
		 FROM companies
		 WHERE description IS NOT NULL AND description <> ''
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreFailed, err)
	}
	return out, nil
}

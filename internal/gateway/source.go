package gateway

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"improvehub/internal/reconcile"
)

var ErrNotFound = errors.New("no matching row")

// Tables names the record sets read from the remote store.
type Tables struct {
	Projects       string
	Demands        string
	Profiles       string
	UsernameColumn string
	PasswordColumn string
}

// DefaultTables matches the Supabase schema the dashboard was built against.
func DefaultTables() Tables {
	return Tables{
		Projects:       "projetos",
		Demands:        "demandas",
		Profiles:       "profiles",
		UsernameColumn: "username",
		PasswordColumn: "password",
	}
}

// RowSource reads loosely typed rows.
type RowSource interface {
	FetchAll(ctx context.Context, table string) ([]reconcile.Row, error)
	FindOne(ctx context.Context, table string, match map[string]string) (reconcile.Row, error)
}

// PgSource reads rows from Postgres. Every column comes back under its own
// name with whatever Go type pgx decodes it to.
type PgSource struct {
	db *pgxpool.Pool
}

func NewPgSource(db *pgxpool.Pool) *PgSource {
	return &PgSource{db: db}
}

// FetchAll returns every row of table.
func (s *PgSource) FetchAll(ctx context.Context, table string) ([]reconcile.Row, error) {
	query := "SELECT * FROM " + pgx.Identifier{table}.Sanitize()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}

	out := make([]reconcile.Row, len(maps))
	for i, m := range maps {
		out[i] = reconcile.Row(m)
	}
	return out, nil
}

// FindOne returns the first row whose columns equal match.
func (s *PgSource) FindOne(ctx context.Context, table string, match map[string]string) (reconcile.Row, error) {
	query, args := selectOne(table, match)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return reconcile.Row(m), nil
}

// selectOne builds an equality-filtered single row query. Columns are sorted
// so the statement text is stable.
func selectOne(table string, match map[string]string) (string, []any) {
	cols := make([]string, 0, len(match))
	for c := range match {
		cols = append(cols, c)
	}
	slices.Sort(cols)

	query := "SELECT * FROM " + pgx.Identifier{table}.Sanitize()
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		if i == 0 {
			query += " WHERE "
		} else {
			query += " AND "
		}
		args = append(args, match[c])
		query += fmt.Sprintf("%s = $%d", pgx.Identifier{c}.Sanitize(), len(args))
	}
	return query + " LIMIT 1", args
}

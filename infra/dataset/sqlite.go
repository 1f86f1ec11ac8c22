package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/evrange/core/dataset"
	"github.com/kilianp07/evrange/core/model"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads the categorical columns of a table in a local SQLite
// database. NULL cells are treated as missing values.
type SQLiteSource struct {
	Path  string
	Table string
}

// Load selects the categorical columns of every row.
func (s SQLiteSource) Load(ctx context.Context) (*dataset.Table, error) {
	if !identifier.MatchString(s.Table) {
		return nil, fmt.Errorf("invalid table name %q", s.Table)
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	cols := make([]string, len(model.CategoricalFields))
	for i, f := range model.CategoricalFields {
		cols[i] = string(f)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s`, quoteAll(cols), s.Table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make([]string, len(cols))
		for i, c := range cells {
			if c.Valid {
				rec[i] = c.String
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dataset.NewTable(cols, out)
}

func quoteAll(cols []string) string {
	q := make([]string, len(cols))
	for i, c := range cols {
		q[i] = `"` + c + `"`
	}
	return strings.Join(q, ", ")
}

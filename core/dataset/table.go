package dataset

import (
	"fmt"
	"strings"
)

// missing mirrors the tokens a dataframe reader treats as NaN by default.
var missing = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(v string) bool {
	_, ok := missing[strings.TrimSpace(v)]
	return ok
}

// Table is an immutable in-memory reference dataset with string cells.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable validates the header and row widths. Rows are copied.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]string, 0, len(rows)),
	}
	for i, c := range t.columns {
		c = strings.TrimSpace(c)
		t.columns[i] = c
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		t.index[c] = i
	}
	for n, r := range rows {
		if len(r) != len(t.columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", n+1, len(r), len(t.columns))
		}
		t.rows = append(t.rows, append([]string(nil), r...))
	}
	return t, nil
}

// Columns returns the header names.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the non-missing values of a column in row order. Cells are
// returned exactly as stored.
func (t *Table) Column(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		if IsMissing(r[i]) {
			continue
		}
		out = append(out, r[i])
	}
	return out, nil
}

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kilianp07/evrange/core/dataset"
)

// CSVSource reads the reference dataset from a CSV file with a header row.
type CSVSource struct {
	Path string
}

// Load reads the whole file. Columns are addressed by header name.
func (s CSVSource) Load(ctx context.Context) (*dataset.Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	t, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.Path, err)
	}
	return t, nil
}

// ReadCSV parses CSV data whose first record is the header.
func ReadCSV(ctx context.Context, r io.Reader) (*dataset.Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	cr.FieldsPerRecord = len(header)
	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return dataset.NewTable(header, rows)
}

func trimBOM(s string) string { return strings.TrimPrefix(s, "\ufeff") }

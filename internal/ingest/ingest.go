// Package ingest turns delimited input rows into keyed records.
//
// Every cell is trimmed and NFC-normalized before a compound key is built,
// so equal names typed with different Unicode compositions score as equal.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/linkage/internal/config"
	"github.com/roach88/linkage/internal/record"
)

// Options controls how rows are decoded.
type Options struct {
	// Positional reads headerless rows whose cells follow the configured
	// potential_columns order. Otherwise the first row is a header.
	Positional bool
}

// RowError reports a row that could not be turned into a record.
// Row is 1-based and counts the header row, matching what an editor shows.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// MarshalJSON encodes the row error as {"row": n, "error": "..."}.
func (e *RowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Row   int    `json:"row"`
		Error string `json:"error"`
	}{e.Row, e.Err.Error()})
}

// Batch is the outcome of reading one input.
type Batch struct {
	Records []record.Record
	// Rejected rows are left out of Records.
	Rejected []*RowError
}

// ReadFile reads a CSV file. See Read.
func ReadFile(path string, cfg config.Config, opts Options) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return Read(f, cfg, opts)
}

// Read decodes every row of r into a record keyed with cfg's templates.
//
// Malformed rows are collected in Batch.Rejected and do not stop the read.
// An error is returned only when the input itself is unusable: a broken
// CSV stream or a header missing a required column.
func Read(r io.Reader, cfg config.Config, opts Options) (*Batch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	row := 0
	var columns []string
	if opts.Positional {
		columns = cfg.PotentialColumns
	} else {
		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return &Batch{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		row++
		columns = make([]string, len(header))
		for i, h := range header {
			columns[i] = normalize(h)
		}
	}
	if err := requireColumns(columns); err != nil {
		return nil, err
	}

	templates := cfg.ParsedTemplates()
	batch := &Batch{}
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		raw, err := decodeRow(columns, cells, cfg)
		if err != nil {
			batch.Rejected = append(batch.Rejected, &RowError{Row: row, Err: err})
			continue
		}
		batch.Records = append(batch.Records, record.Build(raw, templates))
	}
	return batch, nil
}

func requireColumns(columns []string) error {
	var missing []string
	for _, want := range []string{config.ColumnType, config.ColumnID, config.ColumnTransaction} {
		found := false
		for _, c := range columns {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("input columns: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func decodeRow(columns, cells []string, cfg config.Config) (record.Raw, error) {
	if len(cells) > len(columns) {
		return record.Raw{}, fmt.Errorf("%d cells but only %d columns", len(cells), len(columns))
	}

	raw := record.Raw{Attributes: make(map[string]string, len(cells))}
	var typ string
	for i, cell := range cells {
		v := normalize(cell)
		switch columns[i] {
		case config.ColumnType:
			typ = v
		case config.ColumnID:
			raw.EntityID = v
		case config.ColumnTransaction:
			raw.Transaction = v
		default:
			if v != "" {
				raw.Attributes[columns[i]] = v
			}
		}
	}

	t, err := record.ParseType(typ)
	if err != nil {
		return record.Raw{}, err
	}
	raw.Type = t

	if raw.EntityID == "" {
		return record.Raw{}, errors.New("empty ID")
	}

	txn, err := record.ParseTransaction(raw.Transaction)
	if err != nil {
		return record.Raw{}, err
	}
	if !cfg.KnownKind(txn.Kind) {
		return record.Raw{}, fmt.Errorf("transaction kind %q is not configured", txn.Kind)
	}
	return raw, nil
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

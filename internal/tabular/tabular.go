// Package tabular provides a small in-memory table abstraction over the
// tabular sheet exports the engine consumes. Column lookup is
// case/whitespace-insensitive, and header rows can be auto-detected for
// sheets whose headers do not sit on the first row.
package tabular

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	"github.com/spanline/makeready/pkg/errors"
)

// headerProbeDepth is how many leading rows are tried when auto-detecting a
// header row.
const headerProbeDepth = 3

var spaceRe = regexp.MustCompile(`\s+`)

// Table is an immutable sheet: a normalized header plus data rows.
type Table struct {
	Name  string
	cols  []string
	index map[string]int
	rows  [][]string
}

// New builds a table from a raw header and rows.
func New(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:  name,
		cols:  make([]string, len(header)),
		index: make(map[string]int, len(header)),
		rows:  rows,
	}
	for i, h := range header {
		norm := NormalizeColumn(h)
		t.cols[i] = norm
		if _, dup := t.index[norm]; !dup && norm != "" {
			t.index[norm] = i
		}
	}
	return t
}

// FromCSV reads a table whose header is the first row.
func FromCSV(name string, r io.Reader) (*Table, error) {
	records, err := readAll(name, r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return New(name, nil, nil), nil
	}
	return New(name, records[0], records[1:]), nil
}

// FromCSVAuto reads a table, probing the first few rows for one containing
// every required column. Sheets without such a row yield a SheetError.
func FromCSVAuto(name string, r io.Reader, required ...string) (*Table, error) {
	records, err := readAll(name, r)
	if err != nil {
		return nil, err
	}
	return Detect(name, records, required...)
}

// Detect probes the first rows of raw records for a header row containing
// every required column.
func Detect(name string, records [][]string, required ...string) (*Table, error) {
	limit := headerProbeDepth
	if len(records) < limit {
		limit = len(records)
	}
	for i := 0; i < limit; i++ {
		t := New(name, records[i], records[i+1:])
		if t.Has(required...) {
			return t, nil
		}
	}
	return nil, &errors.SheetError{Sheet: name, Missing: required}
}

func readAll(name string, r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are common in hand-edited sheets
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	return records, nil
}

// NormalizeColumn canonicalizes a column name: trimmed, lowercased, inner
// whitespace collapsed.
func NormalizeColumn(s string) string {
	return strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(s, " ")))
}

// Has reports whether every named column exists.
func (t *Table) Has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := t.index[NormalizeColumn(c)]; !ok {
			return false
		}
	}
	return true
}

// MissingColumns returns the subset of cols not present in the table.
func (t *Table) MissingColumns(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if _, ok := t.index[NormalizeColumn(c)]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Columns returns the normalized column names in sheet order.
func (t *Table) Columns() []string {
	return t.cols
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th data row.
func (t *Table) Row(i int) Row {
	return Row{t: t, i: i}
}

// Row is a view over one data row of a table.
type Row struct {
	t *Table
	i int
}

// Get returns the trimmed cell value for a column, or "" when the column is
// absent or the row is short.
func (r Row) Get(col string) string {
	v, _ := r.Lookup(col)
	return v
}

// Lookup returns the trimmed cell value and whether the column exists.
func (r Row) Lookup(col string) (string, bool) {
	idx, ok := r.t.index[NormalizeColumn(col)]
	if !ok {
		return "", false
	}
	cells := r.t.rows[r.i]
	if idx >= len(cells) {
		return "", true
	}
	return strings.TrimSpace(cells[idx]), true
}

// Empty reports whether every cell in the row is blank.
func (r Row) Empty() bool {
	for _, c := range r.t.rows[r.i] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

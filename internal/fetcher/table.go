package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows, as read from CSV or XLSX.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewTable treats rows[0] as the header.
func NewTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, eris.New("table: no header row")
	}
	t := &Table{Header: rows[0], Rows: rows[1:], index: make(map[string]int, len(rows[0]))}
	for i, h := range t.Header {
		key := normalizeHeader(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t, nil
}

// Col returns the index of the named column, matching case- and space-insensitively,
// or -1 when absent.
func (t *Table) Col(name string) int {
	if i, ok := t.index[normalizeHeader(name)]; ok {
		return i
	}
	return -1
}

// Cols resolves every name or reports the missing ones.
func (t *Table) Cols(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = t.Col(n)
		if idx[i] < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("table: missing columns %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// Cell returns row[i], or "" when the row is short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

package datanorm

import "strings"

// UnknownGroup labels rows whose grouping value is missing.
const UnknownGroup = "Onbekend"

// Table is a normalized, column-named grid of values. Rows are aligned with
// Columns; every row has exactly len(Columns) cells.
type Table struct {
	Columns []string  `json:"columns"`
	Rows    [][]Value `json:"rows"`
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries col.
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// HasField is Has for canonical fields.
func (t *Table) HasField(f CanonicalField) bool { return t.Has(string(f)) }

// Column returns a copy of all values of col, or nil if absent.
func (t *Table) Column(col string) []Value {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Field is Column for canonical fields.
func (t *Table) Field(f CanonicalField) []Value { return t.Column(string(f)) }

// Row returns row i as a column-to-value map.
func (t *Table) Row(i int) map[string]Value {
	out := make(map[string]Value, len(t.Columns))
	for j, c := range t.Columns {
		out[c] = t.Rows[i][j]
	}
	return out
}

// Append adds a row. Short rows are padded with missing values; long rows
// are truncated to the column count.
func (t *Table) Append(row ...Value) {
	r := make([]Value, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]Value(nil), row...)
	}
	return out
}

// Select returns a new table holding only the rows at the given indices.
func (t *Table) Select(indices []int) *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([][]Value, 0, len(indices))
	for _, i := range indices {
		out.Rows = append(out.Rows, append([]Value(nil), t.Rows[i]...))
	}
	return out
}

// Filter keeps rows whose col value renders to one of allowed. An empty
// allowed set or an absent column keeps every row.
func (t *Table) Filter(col string, allowed []string) *Table {
	idx := t.Index(col)
	if idx < 0 || len(allowed) == 0 {
		return t.Clone()
	}
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	var keep []int
	for i, row := range t.Rows {
		if set[row[idx].String()] {
			keep = append(keep, i)
		}
	}
	return t.Select(keep)
}

// Group is one bucket produced by GroupBy.
type Group struct {
	Key  []string
	Rows *Table
}

// Label joins the group key for display.
func (g Group) Label() string { return strings.Join(g.Key, " · ") }

// GroupBy buckets rows by the values of one or two columns, in order of
// first appearance. Missing values group under UnknownGroup. Columns that
// are absent are ignored; with no usable column the whole table is one group.
func (t *Table) GroupBy(cols ...string) []Group {
	if len(cols) > 2 {
		cols = cols[:2]
	}
	var idx []int
	for _, c := range cols {
		if i := t.Index(c); i >= 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return []Group{{Key: nil, Rows: t.Clone()}}
	}

	order := []string{}
	keys := map[string][]string{}
	members := map[string][]int{}
	for r, row := range t.Rows {
		key := make([]string, len(idx))
		for k, i := range idx {
			key[k] = row[i].String()
			if row[i].IsMissing() {
				key[k] = UnknownGroup
			}
		}
		id := strings.Join(key, "\x00")
		if _, seen := members[id]; !seen {
			order = append(order, id)
			keys[id] = key
		}
		members[id] = append(members[id], r)
	}

	groups := make([]Group, 0, len(order))
	for _, id := range order {
		groups = append(groups, Group{Key: keys[id], Rows: t.Select(members[id])})
	}
	return groups
}

// Drop returns a copy of the table without the named columns.
func (t *Table) Drop(cols ...string) *Table {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	var keepIdx []int
	var keepCols []string
	for i, c := range t.Columns {
		if !drop[c] {
			keepIdx = append(keepIdx, i)
			keepCols = append(keepCols, c)
		}
	}
	out := NewTable(keepCols...)
	out.Rows = make([][]Value, len(t.Rows))
	for r, row := range t.Rows {
		nr := make([]Value, len(keepIdx))
		for j, i := range keepIdx {
			nr[j] = row[i]
		}
		out.Rows[r] = nr
	}
	return out
}

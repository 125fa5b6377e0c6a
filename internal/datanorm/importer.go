package datanorm

import (
	"fmt"
	"strings"
	"time"
)

// LoadError is returned when no decoder could read an upload.
type LoadError struct {
	Filename string
	// Attempts holds the failure of each decoder, in chain order.
	Attempts map[string]error
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("kan bestand niet lezen als Excel of CSV: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load decodes an upload and normalizes it into a Dataset. The filename is
// only recorded; every decoder is tried in order regardless of extension.
// Load has no side effects.
func Load(data []byte, filename string) (*Dataset, error) {
	rows, used, err := decode(data)
	if err != nil {
		return nil, &LoadError{Filename: filename, Attempts: err.attempts, Err: err.last}
	}

	table, collisions := buildTable(rows)
	Coerce(table)

	ds := &Dataset{
		Name:       filename,
		Decoder:    used,
		Table:      table,
		Collisions: collisions,
		LoadedAt:   time.Now().UTC(),
	}
	if snap, ok := ExtractSnapshot(table); ok {
		ds.Snapshot = &snap
	}
	return ds, nil
}

type chainError struct {
	attempts map[string]error
	last     error
}

func decode(data []byte) ([][]string, string, *chainError) {
	ce := &chainError{attempts: make(map[string]error, len(decoders))}
	for _, d := range decoders {
		rows, err := d.decode(data)
		if err == nil {
			rows = trimLeadingBlank(rows)
			if len(rows) == 0 {
				err = errNoHeader
			}
		}
		if err != nil {
			ce.attempts[d.name] = err
			ce.last = err
			continue
		}
		return rows, d.name, nil
	}
	return nil, "", ce
}

func trimLeadingBlank(rows [][]string) [][]string {
	for len(rows) > 0 && isBlankRow(rows[0]) {
		rows = rows[1:]
	}
	return rows
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// buildTable resolves the header row and copies the data rows as text.
// When two headers resolve to the same column the later one wins, in the
// position of the first.
func buildTable(rows [][]string) (*Table, []Collision) {
	header := rows[0]

	var (
		columns    []string
		target     = make([]int, len(header))
		firstRaw   = map[string]string{}
		collisions []Collision
	)
	for i, raw := range header {
		col := ResolveHeader(raw)
		if col == "" {
			col = fmt.Sprintf("unnamed: %d", i)
		}
		if pos := indexOf(columns, col); pos >= 0 {
			target[i] = pos
			collisions = append(collisions, Collision{Column: col, Overwritten: firstRaw[col], Kept: raw})
			firstRaw[col] = raw
			continue
		}
		target[i] = len(columns)
		columns = append(columns, col)
		firstRaw[col] = raw
	}

	t := NewTable(columns...)
	for _, rec := range rows[1:] {
		if isBlankRow(rec) {
			continue
		}
		row := make([]Value, len(columns))
		for i := range header {
			if i < len(rec) {
				row[target[i]] = Text(rec[i])
			} else {
				row[target[i]] = Missing()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, collisions
}

func indexOf(cols []string, col string) int {
	for i, c := range cols {
		if c == col {
			return i
		}
	}
	return -1
}

package datanorm

// Sanitize returns a copy of t without the PII columns. It never modifies
// t, and sanitizing a sanitized table is a no-op.
func Sanitize(t *Table) *Table {
	cols := make([]string, len(PIIFields))
	for i, f := range PIIFields {
		cols[i] = string(f)
	}
	return t.Drop(cols...)
}

// SanitizeDataset returns a shallow copy of ds carrying the sanitized table.
func SanitizeDataset(ds *Dataset) *Dataset {
	if ds == nil {
		return nil
	}
	out := *ds
	out.Table = Sanitize(ds.Table)
	return &out
}

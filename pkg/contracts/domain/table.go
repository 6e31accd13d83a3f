package domain

// Table is a named, ordered set of rows with labelled columns. Cells hold
// time.Time, float64, int or string values.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

package data

// RawRecord maps a column name to its raw cell value, as read from a CSV
// row or a submitted form.
type RawRecord map[string]string

// Table is an uploaded CSV kept exactly as read. Every row has len(Header)
// cells.
type Table struct {
	Header []string   `json:"columns"`
	Rows   [][]string `json:"rows"`
}

func (t Table) Len() int { return len(t.Rows) }

// Column returns the index of the first header cell equal to name, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Record returns row i as a RawRecord.
func (t Table) Record(i int) RawRecord {
	rec := make(RawRecord, len(t.Header))
	row := t.Rows[i]
	for j, h := range t.Header {
		if j < len(row) {
			rec[h] = row[j]
		}
	}
	return rec
}

// Clone deep-copies the table so the copy shares no cells with t.
func (t Table) Clone() Table {
	out := Table{Header: append([]string(nil), t.Header...), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

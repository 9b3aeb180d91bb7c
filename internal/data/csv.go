package data

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrNoHeader = errors.New("empty file: no header row")
	ErrNoRows   = errors.New("no data rows")
)

const utf8BOM = "\ufeff"

// ReadCSV decodes a comma separated table with a header row. Rows shorter
// than the header are padded with empty cells; longer rows are an error.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrNoHeader
	}
	if err != nil {
		return Table{}, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, err
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return Table{}, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
	}
	if len(t.Rows) == 0 {
		return Table{}, ErrNoRows
	}
	return t, nil
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// EncodeCSV serializes the table to CSV text, header first.
func EncodeCSV(t Table) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}

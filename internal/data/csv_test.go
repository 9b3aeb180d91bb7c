package data

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("\ufeffAge,TransactionAmount\n30,12.5\n41,\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "TransactionAmount"}, tbl.Header)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"41", ""}, tbl.Rows[1])
	assert.Equal(t, 1, tbl.Column("TransactionAmount"))
	assert.Equal(t, -1, tbl.Column("CIF"))
	assert.Equal(t, RawRecord{"Age": "30", "TransactionAmount": "12.5"}, tbl.Record(0))
}

func TestReadCSVPadsShortRows(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b,c\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "", ""}, tbl.Rows[0])
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ReadCSV(strings.NewReader("a,b\n"))
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = ReadCSV(strings.NewReader("a,b\n1,2,3\n"))
	assert.ErrorContains(t, err, "expected 2 fields")

	_, err = ReadCSV(strings.NewReader("a,b\n\"1,2\n"))
	assert.Error(t, err)
}

func TestEncodeCSVKeepsOriginalCells(t *testing.T) {
	tbl := Table{Header: []string{"Note", "Amount"}, Rows: [][]string{{"a, b", "1"}, {"", "x"}}}
	out, err := EncodeCSV(tbl)
	require.NoError(t, err)
	assert.Equal(t, "Note,Amount\n\"a, b\",1\n,x\n", out)

	back, err := ReadCSV(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, tbl, back)
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := Table{Header: []string{"a"}, Rows: [][]string{{"1"}}}
	c := tbl.Clone()
	c.Rows[0][0] = "2"
	c.Header[0] = "b"
	assert.Equal(t, "1", tbl.Rows[0][0])
	assert.Equal(t, "a", tbl.Header[0])
}

func TestGenerateTransactions(t *testing.T) {
	tbl := GenerateTransactions(500, 0.05, rand.New(rand.NewSource(7)))
	require.Equal(t, 500, tbl.Len())
	label := tbl.Column("PotentialFraud")
	require.GreaterOrEqual(t, label, 0)

	frauds := 0
	for _, row := range tbl.Rows {
		require.Len(t, row, len(SyntheticHeader))
		if row[label] == "1" {
			frauds++
		}
	}
	assert.Greater(t, frauds, 0)
	assert.Less(t, frauds, 500)
}

func TestGenerateSyntheticTransactionsWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "synthetic.csv")
	require.NoError(t, GenerateSyntheticTransactions(20, 0.08, 1, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	tbl, err := ReadCSV(f)
	require.NoError(t, err)
	assert.Equal(t, SyntheticHeader, tbl.Header)
	assert.Equal(t, 20, tbl.Len())
}

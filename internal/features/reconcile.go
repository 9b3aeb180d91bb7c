package features

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"fraudscore/internal/data"
)

// Reconcile maps an arbitrary table onto the feature contract, one vector
// per row in row order. Missing contract columns and cells that are not
// numeric become 0; extra columns are dropped; TransactionAmount is
// log1p-transformed last. It never fails: a malformed table still yields
// dense, contract-shaped vectors.
func Reconcile(t data.Table) [][]float64 {
	cols := make([]int, len(contract))
	for i, name := range contract {
		cols[i] = t.Column(name)
	}
	out := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		v := make([]float64, len(contract))
		for i, c := range cols {
			if c >= 0 && c < len(row) {
				v[i] = coerce(row[c])
			}
		}
		v[amountIndex] = math.Log1p(v[amountIndex])
		out[r] = v
	}
	return out
}

// ReconcileRecord is Reconcile for a single record.
func ReconcileRecord(rec data.RawRecord) []float64 {
	v := make([]float64, len(contract))
	for i, name := range contract {
		v[i] = coerce(rec[name])
	}
	v[amountIndex] = math.Log1p(v[amountIndex])
	return v
}

// coerce parses a cell as a float. Out-of-range values keep their ±Inf;
// anything else unparsable, and NaN, becomes 0.
func coerce(cell string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) || math.IsNaN(f) {
		return 0
	}
	return f
}

// Labels reads the PotentialFraud column as binary labels. Any value other
// than 1 counts as 0.
func Labels(t data.Table) ([]int, bool) {
	c := t.Column(LabelColumn)
	if c < 0 {
		return nil, false
	}
	y := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		if c < len(row) && coerce(row[c]) == 1 {
			y[i] = 1
		}
	}
	return y, true
}

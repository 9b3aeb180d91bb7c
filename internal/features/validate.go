package features

import (
	"strconv"
	"strings"

	"fraudscore/internal/data"
)

const msgRequired = "field is required"

// Validate checks a manually entered record against the constraint table.
// The returned map holds one message per invalid field and is empty when
// the record is valid. The label column is skipped.
func Validate(record data.RawRecord) map[string]string {
	errs := map[string]string{}
	for field, value := range record {
		if field == LabelColumn {
			continue
		}
		if value == "" {
			errs[field] = msgRequired
			continue
		}
		c, ok := constraints[field]
		if !ok {
			continue
		}
		v, err := parse(c.Type, value)
		if err != nil {
			errs[field] = "must be a " + string(c.Type)
			continue
		}
		// both bounds are checked; with inverted bounds the max message wins
		if v < c.Min {
			errs[field] = "minimum is " + formatBound(c.Min)
		}
		if v > c.Max {
			errs[field] = "maximum is " + formatBound(c.Max)
		}
	}
	return errs
}

func parse(t FieldType, value string) (float64, error) {
	value = strings.TrimSpace(value)
	if t == TypeInt {
		n, err := strconv.Atoi(value)
		return float64(n), err
	}
	return strconv.ParseFloat(value, 64)
}

func formatBound(b float64) string { return strconv.FormatFloat(b, 'f', -1, 64) }

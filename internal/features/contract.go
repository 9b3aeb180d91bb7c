package features

import "slices"

const (
	// AmountFeature is the only feature that gets log1p applied.
	AmountFeature = "TransactionAmount"
	// LabelColumn holds the training label. It is output-only and never fed to the model.
	LabelColumn = "PotentialFraud"
)

// contract is the exact column order the classifier was trained on.
var contract = []string{
	"Gender", "Age", "HouseTypeID", "ContactAvaliabilityID", "HomeCountry",
	"AccountNo", "CardExpiryDate", "TransactionAmount", "TransactionCountry",
	"LargePurchase", "ProductID", "CIF", "TransactionCurrencyCode",
}

var amountIndex = slices.Index(contract, AmountFeature)

// Contract returns the ordered model inputs.
func Contract() []string { return slices.Clone(contract) }

// Width is the length of every reconciled feature vector.
func Width() int { return len(contract) }

// ExpectedColumns is what an uploaded CSV is expected to carry: the contract
// plus the label column.
func ExpectedColumns() []string { return append(Contract(), LabelColumn) }

// FieldType is the numeric parse applied to a manual-entry value.
type FieldType string

const (
	TypeInt   FieldType = "int"
	TypeFloat FieldType = "float"
)

// FieldConstraint bounds a manual-entry field. Min and Max are inclusive.
type FieldConstraint struct {
	Name  string    `json:"name"`
	Type  FieldType `json:"type"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Label string    `json:"label"`
}

var constraints = map[string]FieldConstraint{
	"Gender":                  {Name: "Gender", Type: TypeInt, Min: 0, Max: 1, Label: "Gender (0=Female, 1=Male)"},
	"Age":                     {Name: "Age", Type: TypeInt, Min: 18, Max: 100, Label: "Age"},
	"HouseTypeID":             {Name: "HouseTypeID", Type: TypeInt, Min: 1, Max: 5, Label: "Housing type"},
	"ContactAvaliabilityID":   {Name: "ContactAvaliabilityID", Type: TypeInt, Min: 1, Max: 3, Label: "Contact availability"},
	"HomeCountry":             {Name: "HomeCountry", Type: TypeInt, Min: 1, Max: 50, Label: "Home country"},
	"AccountNo":               {Name: "AccountNo", Type: TypeInt, Min: 100000, Max: 999999, Label: "Account number"},
	"CardExpiryDate":          {Name: "CardExpiryDate", Type: TypeInt, Min: 202401, Max: 203012, Label: "Card expiry (YYYYMM)"},
	"TransactionAmount":       {Name: "TransactionAmount", Type: TypeFloat, Min: 0.01, Max: 1000000, Label: "Transaction amount"},
	"TransactionCountry":      {Name: "TransactionCountry", Type: TypeInt, Min: 1, Max: 50, Label: "Transaction country"},
	"LargePurchase":           {Name: "LargePurchase", Type: TypeInt, Min: 0, Max: 1, Label: "Large purchase (0=No, 1=Yes)"},
	"ProductID":               {Name: "ProductID", Type: TypeInt, Min: 1, Max: 20, Label: "Product ID"},
	"CIF":                     {Name: "CIF", Type: TypeInt, Min: 1000, Max: 9999, Label: "CIF code"},
	"TransactionCurrencyCode": {Name: "TransactionCurrencyCode", Type: TypeInt, Min: 1, Max: 10, Label: "Currency code"},
}

// Constraint looks up the bounds for a field. Unknown fields report false.
func Constraint(name string) (FieldConstraint, bool) {
	c, ok := constraints[name]
	return c, ok
}

// Constraints lists every constrained field in contract order.
func Constraints() []FieldConstraint {
	out := make([]FieldConstraint, 0, len(constraints))
	for _, name := range contract {
		if c, ok := constraints[name]; ok {
			out = append(out, c)
		}
	}
	return out
}

// MissingColumns reports the expected columns absent from header, in
// expected order.
func MissingColumns(header []string) []string {
	var missing []string
	for _, col := range ExpectedColumns() {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	return missing
}

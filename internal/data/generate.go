package data

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

// SyntheticHeader is the column layout written by the generator: the model
// inputs followed by the PotentialFraud label.
var SyntheticHeader = []string{
	"Gender", "Age", "HouseTypeID", "ContactAvaliabilityID", "HomeCountry",
	"AccountNo", "CardExpiryDate", "TransactionAmount", "TransactionCountry",
	"LargePurchase", "ProductID", "CIF", "TransactionCurrencyCode", "PotentialFraud",
}

// GenerateTransactions builds n labelled transactions. Every value stays
// inside the manual-entry bounds, so generated rows also pass validation.
func GenerateTransactions(n int, fraudRate float64, rng *rand.Rand) Table {
	t := Table{Header: append([]string(nil), SyntheticHeader...), Rows: make([][]string, 0, n)}
	for i := 0; i < n; i++ {
		home := 1 + rng.Intn(50)
		country := home
		if rng.Float64() < 0.15 {
			country = 1 + rng.Intn(50)
		}
		// log-normal amounts, median around 90
		amount := math.Round(math.Exp(rng.NormFloat64()*1.1+4.5)*100) / 100
		if amount < 0.01 {
			amount = 0.01
		}
		if amount > 1000000 {
			amount = 1000000
		}
		large := 0
		if amount > 1000 {
			large = 1
		}
		year := 2024 + rng.Intn(7)
		month := 1 + rng.Intn(12)
		age := 18 + rng.Intn(83)

		score := fraudRate
		flags := 0
		if country != home {
			score += 0.25
			flags++
		}
		if large == 1 {
			score += 0.2
			flags++
		}
		if year == 2024 {
			score += 0.1
			flags++
		}
		if age < 25 || age > 80 {
			score += 0.05
			flags++
		}
		fraud := 0
		if flags >= 3 || rng.Float64() < score {
			fraud = 1
		}

		t.Rows = append(t.Rows, []string{
			strconv.Itoa(rng.Intn(2)),
			strconv.Itoa(age),
			strconv.Itoa(1 + rng.Intn(5)),
			strconv.Itoa(1 + rng.Intn(3)),
			strconv.Itoa(home),
			strconv.Itoa(100000 + rng.Intn(900000)),
			strconv.Itoa(year*100 + month),
			strconv.FormatFloat(amount, 'f', 2, 64),
			strconv.Itoa(country),
			strconv.Itoa(large),
			strconv.Itoa(1 + rng.Intn(20)),
			strconv.Itoa(1000 + rng.Intn(9000)),
			strconv.Itoa(1 + rng.Intn(10)),
			strconv.Itoa(fraud),
		})
	}
	return t
}

// GenerateSyntheticTransactions writes n generated transactions to outPath.
func GenerateSyntheticTransactions(n int, fraudRate float64, seed int64, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	t := GenerateTransactions(n, fraudRate, rand.New(rand.NewSource(seed)))
	return WriteCSV(f, t)
}

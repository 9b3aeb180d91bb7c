package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscore/internal/features"
	"fraudscore/internal/results"
	"fraudscore/internal/scoring"
)

func init() { gin.SetMode(gin.TestMode) }

var amountIdx = slices.Index(features.Contract(), features.AmountFeature)

// thresholdModel flags amounts above 500.
type thresholdModel struct{ fail bool }

func (m *thresholdModel) Fit(X [][]float64, y []int) error { return nil }
func (m *thresholdModel) Name() string                      { return "threshold" }
func (m *thresholdModel) Predict(X [][]float64) []int {
	if m.fail {
		return nil
	}
	out := make([]int, len(X))
	for i, p := range m.PredictProba(X) {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}
func (m *thresholdModel) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, v := range X {
		out[i] = 0.1
		if v[amountIdx] > math.Log1p(500) {
			out[i] = 0.9
		}
	}
	return out
}

type fixture struct {
	router *gin.Engine
	store  *results.Store
}

func newFixture(t *testing.T, m *thresholdModel, opts Options) fixture {
	t.Helper()
	svc, err := scoring.New(m, nil)
	require.NoError(t, err)
	store := results.New(results.Options{})
	return fixture{router: New(svc, store, nil, opts).Router(), store: store}
}

func (f fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func csvWithRows(n int) string {
	var b strings.Builder
	b.WriteString(strings.Join(features.ExpectedColumns(), ",") + "\n")
	for i := 0; i < n; i++ {
		row := make([]string, len(features.ExpectedColumns()))
		for j := range row {
			row[j] = "1"
		}
		row[amountIdx] = "10"
		if i%2 == 1 {
			row[amountIdx] = "1000"
		}
		b.WriteString(strings.Join(row, ",") + "\n")
	}
	return b.String()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func upload(t *testing.T, f fixture, content string) string {
	t.Helper()
	w := f.do(uploadRequest(t, "batch.csv", content))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	return decode(t, w)["results_id"].(string)
}

func TestUploadRedirectsToFirstPage(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	w := f.do(uploadRequest(t, "batch.csv", csvWithRows(250)))
	require.Equal(t, http.StatusSeeOther, w.Code)

	body := decode(t, w)
	id := body["results_id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "/results?page=1&results_id="+url.QueryEscape(id), w.Header().Get("Location"))
	assert.EqualValues(t, 250, body["total_rows"])
	assert.EqualValues(t, 125, body["fraud_count"])
	assert.EqualValues(t, 125, body["normal_count"])
	assert.Empty(t, body["warnings"])
	assert.Equal(t, 1, f.store.Len())
}

func TestUploadWarnsOnMissingColumns(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	w := f.do(uploadRequest(t, "partial.csv", "TransactionAmount,Note\n1000,a\n5,b\n"))
	require.Equal(t, http.StatusSeeOther, w.Code)

	body := decode(t, w)
	warnings := body["warnings"].([]any)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "missing columns: Gender, Age")
	assert.Contains(t, warnings[0], "PotentialFraud")
	assert.EqualValues(t, 1, body["fraud_count"])
}

func TestUploadInputErrors(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})

	noFile := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x=1"))
	noFile.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := f.do(noFile)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no file uploaded", decode(t, w)["error"])

	w = f.do(uploadRequest(t, "", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no file selected", decode(t, w)["error"])

	w = f.do(uploadRequest(t, "empty.csv", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "could not read CSV")

	w = f.do(uploadRequest(t, "ragged.csv", "a,b\n1,2,3\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "could not read CSV")

	assert.Zero(t, f.store.Len())
}

func TestUploadTooLarge(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{MaxUploadBytes: 64})
	w := f.do(uploadRequest(t, "big.csv", csvWithRows(50)))
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, w.Code)
	assert.Zero(t, f.store.Len())
}

func TestUploadScoringFailureCreatesNoSession(t *testing.T) {
	f := newFixture(t, &thresholdModel{fail: true}, Options{})
	w := f.do(uploadRequest(t, "batch.csv", csvWithRows(3)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "scoring failed", decode(t, w)["error"])
	assert.Zero(t, f.store.Len())
}

func TestResultsPagination(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	id := upload(t, f, csvWithRows(250))

	w := f.do(httptest.NewRequest(http.MethodGet, "/results?results_id="+id+"&page=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["rows"], 50)
	assert.EqualValues(t, 3, body["current_page"])
	assert.EqualValues(t, 3, body["total_pages"])
	assert.EqualValues(t, 250, body["total_rows"])
	assert.EqualValues(t, 100, body["per_page"])
	assert.EqualValues(t, 125, body["fraud_count"])
	assert.Equal(t, features.ExpectedColumns(), toStrings(body["columns"].([]any)))
	assert.True(t, strings.HasPrefix(body["csv_data"].(string), "Gender,Age,"))

	w = f.do(httptest.NewRequest(http.MethodGet, "/results?results_id="+id+"&page=not-a-number", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 1, body["current_page"])
	assert.Len(t, body["rows"], 100)

	for _, page := range []string{"9", "9223372036854775807", "92233720368547760"} {
		w = f.do(httptest.NewRequest(http.MethodGet, "/results?results_id="+id+"&page="+page, nil))
		require.Equal(t, http.StatusOK, w.Code, page)
		body = decode(t, w)
		assert.Empty(t, body["rows"], page)
		assert.EqualValues(t, 3, body["total_pages"], page)
	}
}

func TestResultsCustomPageSize(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{PageSize: 10})
	id := upload(t, f, csvWithRows(25))
	w := f.do(httptest.NewRequest(http.MethodGet, "/results?results_id="+id, nil))
	body := decode(t, w)
	assert.Len(t, body["rows"], 10)
	assert.EqualValues(t, 3, body["total_pages"])
}

func TestResultsUnknownSession(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	for _, target := range []string{"/results", "/results?results_id=missing&page=1"} {
		w := f.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.Equal(t, "no result data available", decode(t, w)["error"])
	}
}

func TestRowPrediction(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	id := upload(t, f, csvWithRows(4))

	w := f.do(httptest.NewRequest(http.MethodGet, "/get_prediction/"+id+"/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["prediction"])
	assert.Equal(t, scoring.VerdictFraud, body["message"])

	w = f.do(httptest.NewRequest(http.MethodGet, "/get_prediction/"+id+"/0", nil))
	body = decode(t, w)
	assert.EqualValues(t, 0, body["prediction"])
	assert.Equal(t, scoring.VerdictNormal, body["message"])

	for _, row := range []string{"4", "-1", "abc"} {
		w = f.do(httptest.NewRequest(http.MethodGet, "/get_prediction/"+id+"/"+row, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, row)
		assert.Equal(t, "row not found", decode(t, w)["error"])
	}
}

func TestRowPredictionUnknownSession(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	upload(t, f, csvWithRows(2))

	w := f.do(httptest.NewRequest(http.MethodGet, "/get_prediction/unknown/0", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "results not found", decode(t, w)["error"])
	assert.Equal(t, 1, f.store.Len())
}

func manualRequest(values map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/predict_manual", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validManual() map[string]string {
	return map[string]string{
		"Gender": "0", "Age": "42", "HouseTypeID": "3", "ContactAvaliabilityID": "2",
		"HomeCountry": "7", "AccountNo": "555555", "CardExpiryDate": "202805",
		"TransactionAmount": "1000", "TransactionCountry": "7", "LargePurchase": "1",
		"ProductID": "12", "CIF": "2500", "TransactionCurrencyCode": "4",
	}
}

func TestPredictManual(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	w := f.do(manualRequest(validManual()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decode(t, w)["result"].(map[string]any)
	assert.Contains(t, []any{float64(0), float64(1)}, result["prediction"])
	assert.EqualValues(t, 1, result["prediction"])
	assert.Equal(t, "danger", result["color"])
	assert.Equal(t, scoring.VerdictFraud, result["text"])
	assert.InDeltaSlice(t, []float64{0.1, 0.9}, toFloats(result["proba"].([]any)), 1e-9)
	assert.Zero(t, f.store.Len())
}

func TestPredictManualNormal(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	in := validManual()
	in["TransactionAmount"] = "20"
	w := f.do(manualRequest(in))
	require.Equal(t, http.StatusOK, w.Code)
	result := decode(t, w)["result"].(map[string]any)
	assert.Equal(t, "success", result["color"])
	assert.Equal(t, scoring.VerdictNormal, result["text"])
}

func TestPredictManualValidationErrors(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	in := validManual()
	in["Age"] = "15"
	delete(in, "CIF")
	w := f.do(manualRequest(in))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decode(t, w)
	assert.Equal(t, map[string]any{"Age": "minimum is 18", "CIF": "field is required"}, body["errors"])
	assert.NotContains(t, body, "result")
	assert.Equal(t, "15", body["form_data"].(map[string]any)["Age"])
}

func TestIndexAndManualForm(t *testing.T) {
	f := newFixture(t, &thresholdModel{}, Options{})
	w := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, features.ExpectedColumns(), toStrings(decode(t, w)["expected_columns"].([]any)))

	w = f.do(httptest.NewRequest(http.MethodGet, "/manual", nil))
	require.Equal(t, http.StatusOK, w.Code)
	fields := decode(t, w)["field_types"].([]any)
	require.Len(t, fields, features.Width())
	age := fields[1].(map[string]any)
	assert.Equal(t, "Age", age["name"])
	assert.EqualValues(t, 18, age["min"])
	assert.Equal(t, "int", age["type"])
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toFloats(in []any) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = v.(float64)
	}
	return out
}

package navjson

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-returns/internal/domain"
)

const sample = `{
  "meta": {"scheme_code": 119551, "scheme_name": "Bluechip Fund - Direct Plan - Growth"},
  "data": [
    {"date": "26-10-2024", "nav": "92.10350"},
    {"date": "25-10-2024", "nav": "91.84710"}
  ],
  "status": "SUCCESS"
}`

func TestDecode_DefaultFormat(t *testing.T) {
	doc, err := Decode(strings.NewReader(sample), DefaultFormat)

	require.NoError(t, err)
	assert.Equal(t, "119551", doc.Fund.ID)
	assert.Equal(t, "Bluechip Fund - Direct Plan - Growth", doc.Fund.Name)
	require.Len(t, doc.Points, 2)
	assert.Equal(t, "2024-10-26", doc.Points[0].Date.String())
	assert.True(t, doc.Points[0].Price.Equal(decimal.RequireFromString("92.1035")))

	series, err := domain.NewValuationSeries(doc.Fund.ID, doc.Points)
	require.NoError(t, err)
	latest, _ := series.Latest()
	assert.Equal(t, "2024-10-26", latest.Date.String())
}

func TestDecode_CustomFormat(t *testing.T) {
	in := `{"prices": {"history": [{"d": "2024-01-02", "close": 101.5}, {"d": "2024-01-03", "close": 102}]}}`
	f := Format{
		Path:       "$.prices.history[*]",
		DateField:  "d",
		PriceField: "close",
		DateLayout: "2006-01-02",
	}

	doc, err := Decode(strings.NewReader(in), f)

	require.NoError(t, err)
	assert.Equal(t, domain.Fund{}, doc.Fund)
	require.Len(t, doc.Points, 2)
	assert.True(t, doc.Points[0].Price.Equal(decimal.RequireFromString("101.5")))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "Not JSON", input: `{`, errMsg: "failed to decode json"},
		{name: "Row is not an object", input: `{"data": [1]}`, errMsg: "row 0 is not an object"},
		{name: "Bad date", input: `{"data": [{"date": "2024-10-26", "nav": "1"}]}`, errMsg: "invalid \"date\""},
		{name: "Bad price", input: `{"data": [{"date": "26-10-2024", "nav": "n/a"}]}`, errMsg: "invalid \"nav\""},
		{name: "Missing price", input: `{"data": [{"date": "26-10-2024"}]}`, errMsg: "missing \"nav\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), DefaultFormat)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

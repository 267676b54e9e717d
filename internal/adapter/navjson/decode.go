package navjson

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-returns/internal/domain"
)

/*
Price history documents as served by public NAV APIs, e.g.

	{
	    "meta": {"scheme_code": 119551, "scheme_name": "Bluechip Fund - Direct Plan - Growth"},
	    "data": [
	        {"date": "26-10-2024", "nav": "92.10350"},
	        {"date": "25-10-2024", "nav": "91.84710"}
	    ],
	    "status": "SUCCESS"
	}

The Format says where rows and fields live, so other shapes only need a new Format.
*/

// Format locates the valuation rows inside a JSON document
type Format struct {
	Path       string // JSONPath selecting the list of rows
	DateField  string
	PriceField string
	DateLayout string // time layout of DateField
	IDPath     string // Optional JSONPath of the fund identifier
	NamePath   string // Optional JSONPath of the fund name
}

// DefaultFormat matches the document shown above
var DefaultFormat = Format{
	Path:       "$.data[*]",
	DateField:  "date",
	PriceField: "nav",
	DateLayout: "02-01-2006",
	IDPath:     "$.meta.scheme_code",
	NamePath:   "$.meta.scheme_name",
}

// Document is a decoded price history
type Document struct {
	Fund   domain.Fund // Zero when the format has no metadata paths
	Points []domain.ValuationPoint
}

// Decode reads one JSON document and extracts its valuation points
// Points are returned in document order; domain.NewValuationSeries sorts them.
func Decode(r io.Reader, f Format) (*Document, error) {
	var obj any
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	jrows, err := jsonpath.Get(f.Path, obj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", f.Path, err)
	}
	rows, ok := jrows.([]any)
	if !ok {
		return nil, fmt.Errorf("%q does not select a list of rows", f.Path)
	}

	doc := &Document{Points: make([]domain.ValuationPoint, 0, len(rows))}
	for i, jrow := range rows {
		row, ok := jrow.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d is not an object", i)
		}
		p, err := f.point(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		doc.Points = append(doc.Points, p)
	}

	if f.IDPath != "" {
		doc.Fund.ID = scalar(obj, f.IDPath)
	}
	if f.NamePath != "" {
		doc.Fund.Name = scalar(obj, f.NamePath)
	}
	return doc, nil
}

func (f Format) point(row map[string]any) (domain.ValuationPoint, error) {
	rawDate, ok := row[f.DateField].(string)
	if !ok {
		return domain.ValuationPoint{}, fmt.Errorf("missing %q", f.DateField)
	}
	t, err := time.Parse(f.DateLayout, strings.TrimSpace(rawDate))
	if err != nil {
		return domain.ValuationPoint{}, fmt.Errorf("invalid %q: %w", f.DateField, err)
	}

	var price decimal.Decimal
	switch v := row[f.PriceField].(type) {
	case string:
		price, err = decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return domain.ValuationPoint{}, fmt.Errorf("invalid %q: %w", f.PriceField, err)
		}
	case float64:
		price = decimal.NewFromFloat(v)
	default:
		return domain.ValuationPoint{}, fmt.Errorf("missing %q", f.PriceField)
	}

	return domain.ValuationPoint{Date: domain.DateOf(t), Price: price}, nil
}

// scalar returns the value at path rendered as a string, "" when absent
func scalar(obj any, path string) string {
	v, err := jsonpath.Get(path, obj)
	if err != nil {
		return ""
	}
	// jsonpath may wrap a single match in a list
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

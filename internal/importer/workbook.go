// Package importer maps spreadsheet workbooks onto health records and back.
package importer

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Row maps a column header to a raw cell value. A header that is absent from
// the map is a missing cell.
type Row map[string]any

// Workbook exposes the parsed sheets of a spreadsheet
type Workbook interface {
	// Rows returns the data rows of the named sheet in sheet order and
	// reports whether the sheet exists.
	Rows(sheet string) ([]Row, bool)
}

// Sheets is an in-memory Workbook keyed by sheet name
type Sheets map[string][]Row

// Rows implements Workbook
func (s Sheets) Rows(sheet string) ([]Row, bool) {
	rows, ok := s[sheet]
	return rows, ok
}

// Lookup returns the cell under header coerced to a string. A nil value is
// treated as missing.
func (r Row) Lookup(header string) (string, bool) {
	v, ok := r[header]
	if !ok || v == nil {
		return "", false
	}
	return cellString(v), true
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	if math.Trunc(f) == f && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', 0, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

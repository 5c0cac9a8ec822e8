package platform

import "strconv"

// Row is one result row of a reporting query. Values arrive as JSON
// scalars; the typed getters tolerate the string-encoded numbers the
// reporting API emits for large integers.
type Row map[string]any

// Str returns the field as a string, "" when absent.
func (r Row) Str(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Float returns the field as a float64, 0 when absent or unparsable.
func (r Row) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Int returns the field as an int64, 0 when absent or unparsable.
func (r Row) Int(field string) int64 {
	switch v := r[field].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case int:
		return int64(v)
	default:
		return 0
	}
}

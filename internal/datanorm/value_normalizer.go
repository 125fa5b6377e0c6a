package datanorm

import (
	"math"
	"strconv"
	"strings"
)

// canteenVocabulary is the closed set of recognised has_canteen values.
// Anything else is false.
var canteenVocabulary = map[string]bool{
	"ja":    true,
	"nee":   false,
	"true":  true,
	"false": false,
	"1":     true,
	"0":     false,
}

// Coerce normalizes every cell of t in place according to the semantic type
// of its column. It never fails: values that cannot be coerced become
// missing (counts) or false (has_canteen).
func Coerce(t *Table) {
	for j, col := range t.Columns {
		typ := CanonicalField(col).Type()
		for _, row := range t.Rows {
			row[j] = coerceValue(typ, row[j])
		}
	}
}

func coerceValue(typ FieldType, v Value) Value {
	switch typ {
	case TypeBool:
		return Bool(parseCanteen(v))
	case TypeCount:
		return coerceCount(v)
	case TypeDate:
		if v.Kind == KindDate {
			return v
		}
		return coerceText(v)
	default:
		return coerceText(v)
	}
}

func coerceText(v Value) Value {
	if v.Kind == KindMissing {
		return v
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return Missing()
	}
	return Text(s)
}

func parseCanteen(v Value) bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindMissing:
		return false
	}
	return ParseCanteen(v.String())
}

// coerceCount applies the strict non-negative integer policy: "12", "12.0"
// and "12,0" are 12; "12.5", "-3" and "twaalf" become missing with the
// source text kept in Raw.
func coerceCount(v Value) Value {
	switch v.Kind {
	case KindMissing:
		return v
	case KindNumber:
		if isCount(v.Num) {
			return v
		}
		return invalid(v.String())
	}
	raw := strings.TrimSpace(v.String())
	if raw == "" {
		return Missing()
	}
	n, ok := ParseNumber(raw)
	if !ok || !isCount(n) {
		return invalid(raw)
	}
	return Number(n)
}

func isCount(f float64) bool {
	return f >= 0 && f == math.Trunc(f)
}

// ParseNumber parses a plain decimal number. A single decimal comma is
// accepted when no dot is present. NaN and infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumericValue returns the numeric reading of v for aggregation. Text is
// parsed with ParseNumber; booleans and dates are not numeric.
func NumericValue(v Value) (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindText:
		return ParseNumber(v.Text)
	}
	return 0, false
}

// ParseCanteen exposes the has_canteen vocabulary for callers that hold raw
// strings.
func ParseCanteen(s string) bool {
	return canteenVocabulary[strings.ToLower(strings.TrimSpace(s))]
}

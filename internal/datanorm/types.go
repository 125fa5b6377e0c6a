package datanorm

import (
	"encoding/json"
	"strconv"
	"time"
)

// Kind identifies which member of a Value is populated.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindBool
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// Value is a single cell of a normalized table.
//
// A missing value may still carry Raw: the source text that failed coercion.
// Aggregations treat it as missing; the validator counts it as non-conforming.
type Value struct {
	Kind Kind
	Text string
	Bool bool
	Num  float64
	Date time.Time
	Raw  string
}

// valueJSON is the compact wire form of a Value. Date is a pointer so that
// cells without a date carry no "d" key.
type valueJSON struct {
	Kind Kind       `json:"k"`
	Text string     `json:"s,omitempty"`
	Bool bool       `json:"b,omitempty"`
	Num  float64    `json:"n,omitempty"`
	Date *time.Time `json:"d,omitempty"`
	Raw  string     `json:"r,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	w := valueJSON{Kind: v.Kind, Text: v.Text, Bool: v.Bool, Num: v.Num, Raw: v.Raw}
	if !v.Date.IsZero() {
		d := v.Date
		w.Date = &d
	}
	return json.Marshal(w)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var w valueJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = Value{Kind: w.Kind, Text: w.Text, Bool: w.Bool, Num: w.Num, Raw: w.Raw}
	if w.Date != nil {
		v.Date = *w.Date
	}
	return nil
}

func Missing() Value { return Value{} }
func Text(s string) Value { return Value{Kind: KindText, Text: s} }
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func Date(t time.Time) Value { return Value{Kind: KindDate, Date: t} }
func invalid(raw string) Value { return Value{Kind: KindMissing, Raw: raw} }
func (v Value) IsMissing() bool { return v.Kind == KindMissing }
func (v Value) Float() (float64, bool) { return v.Num, v.Kind == KindNumber }

// String renders the value the way it appears in exports and reports.
// Missing values render as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// Collision records a raw header that was overwritten because a later raw
// header resolved to the same column.
type Collision struct {
	Column      string `json:"column"`
	Overwritten string `json:"overwritten"`
	Kept        string `json:"kept"`
}

// Dataset is one loaded upload: the normalized table plus the metadata that
// must be replaced together with it.
type Dataset struct {
	Name       string      `json:"name"`
	Decoder    string      `json:"decoder"`
	Table      *Table      `json:"table"`
	Snapshot   *time.Time  `json:"snapshot,omitempty"`
	Collisions []Collision `json:"collisions,omitempty"`
	LoadedAt   time.Time   `json:"loaded_at"`
}

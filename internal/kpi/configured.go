package kpi

import (
	"strings"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
)

// Spec types understood by Evaluate.
const (
	TypeCountRows     = "count_rows"
	TypeSum           = "sum"
	TypeMean          = "mean"
	TypePctTrue       = "pct_true"
	TypeCountNewNames = "count_new_names"
)

// Spec configures one KPI tile.
type Spec struct {
	Key    string `yaml:"key" json:"key"`
	Label  string `yaml:"label" json:"label"`
	Type   string `yaml:"type" json:"type"`
	Column string `yaml:"column" json:"column,omitempty"`
}

// DisplayLabel falls back to the key when no label is configured.
func (s Spec) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Key
}

// IsPercentage reports whether the value renders as a percentage.
func (s Spec) IsPercentage() bool {
	return strings.Contains(strings.ToLower(s.Key), "pct")
}

// Metric is one configured KPI value. Valid is false when the KPI could not
// be computed for the dataset.
type Metric struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Value float64  `json:"value"`
	Valid bool     `json:"valid"`
	Delta *float64 `json:"delta,omitempty"`
	Pct   bool     `json:"pct"`
}

// Evaluate computes every spec against cur. baseline may be nil; KPIs that
// need it are then invalid.
func Evaluate(specs []Spec, cur, baseline *datanorm.Table) []Metric {
	out := make([]Metric, len(specs))
	for i, s := range specs {
		m := Metric{Key: s.Key, Label: s.DisplayLabel(), Pct: s.IsPercentage()}
		m.Value, m.Valid = evaluate(s, cur, baseline)
		out[i] = m
	}
	return out
}

// EvaluateWithDeltas evaluates specs on both datasets and attaches
// cur - base to each metric valid on both sides.
func EvaluateWithDeltas(specs []Spec, cur, base *datanorm.Table) []Metric {
	curM := Evaluate(specs, cur, base)
	if base == nil {
		return curM
	}
	baseM := Evaluate(specs, base, base)
	for i := range curM {
		if curM[i].Valid && baseM[i].Valid {
			d := curM[i].Value - baseM[i].Value
			curM[i].Delta = &d
		}
	}
	return curM
}

func evaluate(s Spec, t, baseline *datanorm.Table) (float64, bool) {
	switch s.Type {
	case TypeCountRows:
		return float64(t.Len()), true
	case TypeSum:
		if !t.Has(s.Column) {
			return 0, false
		}
		if v := sum(numbers(t, datanorm.CanonicalField(s.Column))); v != nil {
			return *v, true
		}
		return 0, true
	case TypeMean:
		if !t.Has(s.Column) {
			return 0, false
		}
		if v := mean(numbers(t, datanorm.CanonicalField(s.Column))); v != nil {
			return *v, true
		}
		return 0, false
	case TypePctTrue:
		if !t.Has(s.Column) {
			return 0, false
		}
		if v := pctTrue(t, datanorm.CanonicalField(s.Column)); v != nil {
			return *v, true
		}
		return 0, true
	case TypeCountNewNames:
		if baseline == nil {
			return 0, false
		}
		known := nameSet(baseline)
		n := 0
		for name := range nameSet(t) {
			if !known[name] {
				n++
			}
		}
		return float64(n), true
	}
	return 0, false
}

func nameSet(t *datanorm.Table) map[string]bool {
	out := map[string]bool{}
	for _, v := range t.Field(datanorm.FieldName) {
		if v.IsMissing() {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			out[s] = true
		}
	}
	return out
}

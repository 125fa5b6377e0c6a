// Package kpi computes descriptive statistics over normalized club tables.
// Absent inputs produce absent results (nil), never a silent zero.
package kpi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
)

// CoreKPIs are the headline figures of one dataset.
type CoreKPIs struct {
	TotalClubs      int      `json:"total_clubs"`
	MembersSum      *float64 `json:"members_sum"`
	MembersAvg      *float64 `json:"members_avg"`
	VolunteersSum   *float64 `json:"volunteers_sum"`
	VolunteersAvg   *float64 `json:"volunteers_avg"`
	CanteenPct      *float64 `json:"has_canteen_pct"`
	TopMunicipality string   `json:"top_municipality"`
	TopSport        string   `json:"top_sport"`
}

// Deltas hold current minus baseline for each numeric core KPI. A delta is
// nil when either side is nil.
type Deltas struct {
	TotalClubs    *float64 `json:"total_clubs"`
	MembersSum    *float64 `json:"members_sum"`
	MembersAvg    *float64 `json:"members_avg"`
	VolunteersSum *float64 `json:"volunteers_sum"`
	VolunteersAvg *float64 `json:"volunteers_avg"`
	CanteenPct    *float64 `json:"has_canteen_pct"`
}

// Core computes the headline KPIs of t.
func Core(t *datanorm.Table) CoreKPIs {
	members := numbers(t, datanorm.FieldMembersCount)
	volunteers := numbers(t, datanorm.FieldVolunteersCount)
	return CoreKPIs{
		TotalClubs:      t.Len(),
		MembersSum:      sum(members),
		MembersAvg:      mean(members),
		VolunteersSum:   sum(volunteers),
		VolunteersAvg:   mean(volunteers),
		CanteenPct:      pctTrue(t, datanorm.FieldHasCanteen),
		TopMunicipality: top3(t, datanorm.FieldMunicipality),
		TopSport:        top3(t, datanorm.FieldSport),
	}
}

// Compare returns cur - base for every KPI present on both sides.
func Compare(base, cur CoreKPIs) Deltas {
	total := float64(cur.TotalClubs - base.TotalClubs)
	return Deltas{
		TotalClubs:    &total,
		MembersSum:    diff(base.MembersSum, cur.MembersSum),
		MembersAvg:    diff(base.MembersAvg, cur.MembersAvg),
		VolunteersSum: diff(base.VolunteersSum, cur.VolunteersSum),
		VolunteersAvg: diff(base.VolunteersAvg, cur.VolunteersAvg),
		CanteenPct:    diff(base.CanteenPct, cur.CanteenPct),
	}
}

func diff(base, cur *float64) *float64 {
	if base == nil || cur == nil {
		return nil
	}
	d := *cur - *base
	return &d
}

// numbers returns the numeric readings of col, skipping missing and
// non-numeric cells.
func numbers(t *datanorm.Table, f datanorm.CanonicalField) []float64 {
	var out []float64
	for _, v := range t.Field(f) {
		if n, ok := datanorm.NumericValue(v); ok {
			out = append(out, n)
		}
	}
	return out
}

func sum(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return &s
}

func mean(vals []float64) *float64 {
	s := sum(vals)
	if s == nil {
		return nil
	}
	m := *s / float64(len(vals))
	return &m
}

// pctTrue is the share of rows whose f is true, over all rows. An absent
// column counts as all false; an empty table has no percentage.
func pctTrue(t *datanorm.Table, f datanorm.CanonicalField) *float64 {
	if t.Len() == 0 {
		return nil
	}
	n := 0
	for _, v := range t.Field(f) {
		if v.Kind == datanorm.KindBool && v.Bool {
			n++
		}
	}
	p := float64(n) / float64(t.Len()) * 100
	return &p
}

type count struct {
	label string
	n     int
	first int
}

// top3 renders the three most frequent values of f as
// "X: n (p%) · Y: n (p%) · ...". Missing values count as Onbekend.
func top3(t *datanorm.Table, f datanorm.CanonicalField) string {
	vals := t.Field(f)
	if len(vals) == 0 {
		return "-"
	}
	byLabel := map[string]*count{}
	for i, v := range vals {
		label := v.String()
		if v.IsMissing() {
			label = datanorm.UnknownGroup
		}
		c, ok := byLabel[label]
		if !ok {
			c = &count{label: label, first: i}
			byLabel[label] = c
		}
		c.n++
	}
	counts := make([]*count, 0, len(byLabel))
	for _, c := range byLabel {
		counts = append(counts, c)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].n != counts[j].n {
			return counts[i].n > counts[j].n
		}
		return counts[i].first < counts[j].first
	})
	if len(counts) > 3 {
		counts = counts[:3]
	}
	items := make([]string, len(counts))
	for i, c := range counts {
		items[i] = fmt.Sprintf("%s: %d (%.1f%%)", c.label, c.n, float64(c.n)/float64(len(vals))*100)
	}
	return strings.Join(items, " · ")
}

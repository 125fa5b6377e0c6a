package kpi

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ReportInput is everything RenderReport prints.
type ReportInput struct {
	GeneratedAt     time.Time
	BaseSnapshot    *time.Time
	CurrentSnapshot *time.Time
	Current         CoreKPIs
	Deltas          Deltas
	Configured      []Metric
}

// RenderReport produces the plain-text KPI report.
func RenderReport(in ReportInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monitoring KPI-rapport - %s\n", in.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Peildatum nulmeting: %s\n", FormatDate(in.BaseSnapshot, "2006-01-02"))
	fmt.Fprintf(&b, "Peildatum actueel:   %s\n", FormatDate(in.CurrentSnapshot, "2006-01-02"))
	b.WriteString("\n[Core KPI's]\n")

	c, d := in.Current, in.Deltas
	fmt.Fprintf(&b, "Aantal clubs (actueel): %d (Δ %s)\n", c.TotalClubs, formatDelta(d.TotalClubs))
	fmt.Fprintf(&b, "Totaal leden: %s (Δ %s)\n", formatNumber(c.MembersSum), formatDelta(d.MembersSum))
	fmt.Fprintf(&b, "Totaal vrijwilligers: %s (Δ %s)\n", formatNumber(c.VolunteersSum), formatDelta(d.VolunteersSum))
	pct := "-"
	if c.CanteenPct != nil {
		pct = fmt.Sprintf("%.1f%%", *c.CanteenPct)
	}
	if d.CanteenPct != nil {
		pct += fmt.Sprintf(" (Δ %.1f%%)", *d.CanteenPct)
	}
	fmt.Fprintf(&b, "%% met kantine: %s\n", pct)

	if len(in.Configured) > 0 {
		b.WriteString("\n[Config KPI's]\n")
		for _, m := range in.Configured {
			fmt.Fprintf(&b, "%s: %s\n", m.Label, FormatMetric(m))
		}
	}
	return b.String()
}

// FormatDate renders t with layout, or Onbekend when absent.
func FormatDate(t *time.Time, layout string) string {
	if t == nil {
		return "Onbekend"
	}
	return t.Format(layout)
}

// FormatMetric renders a configured KPI with its delta.
func FormatMetric(m Metric) string {
	if !m.Valid {
		return "-"
	}
	if m.Pct {
		s := fmt.Sprintf("%.1f%%", m.Value)
		if m.Delta != nil {
			s += fmt.Sprintf(" (Δ %+.1f%%)", *m.Delta)
		}
		return s
	}
	s := formatNumber(&m.Value)
	if m.Delta != nil {
		s += " (Δ " + signed(*m.Delta) + ")"
	}
	return s
}

func formatNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	if *v == math.Trunc(*v) {
		return fmt.Sprintf("%d", int64(*v))
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatDelta(v *float64) string {
	if v == nil {
		return "0"
	}
	return signed(*v)
}

func signed(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%+d", int64(v))
	}
	return fmt.Sprintf("%+.2f", v)
}

package kpi

import (
	"fmt"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
)

// Metric names accepted by Insights.
const (
	MetricClubs         = "clubs"
	MetricMembersSum    = "members_sum"
	MetricMembersAvg    = "members_avg"
	MetricVolunteersSum = "volunteers_sum"
	MetricVolunteersAvg = "volunteers_avg"
	MetricCanteenPct    = "canteen_pct"
)

// GroupableFields may be used in Query.GroupBy.
var GroupableFields = []string{
	string(datanorm.FieldMunicipality),
	string(datanorm.FieldSport),
	string(datanorm.FieldFederation),
}

// Query selects a filtered, grouped metric.
type Query struct {
	GroupBy      []string
	Municipality []string
	Sport        []string
	Metric       string
}

// InsightRow is the metric for one group.
type InsightRow struct {
	Label        string  `json:"label"`
	Value        float64 `json:"value"`
	Clubs        int     `json:"clubs"`
	ShareOfTotal float64 `json:"share_of_total"`
}

// Insights is the result of a Query.
type Insights struct {
	Metric string       `json:"metric"`
	Total  int          `json:"total"`
	Value  *float64     `json:"value,omitempty"`
	Groups []InsightRow `json:"groups,omitempty"`
}

// Validate rejects unknown metrics and grouping columns.
func (q Query) Validate() error {
	switch q.Metric {
	case MetricClubs, MetricMembersSum, MetricMembersAvg, MetricVolunteersSum, MetricVolunteersAvg, MetricCanteenPct:
	default:
		return fmt.Errorf("unknown metric %q", q.Metric)
	}
	if len(q.GroupBy) > 2 {
		return fmt.Errorf("at most 2 grouping columns, got %d", len(q.GroupBy))
	}
	for _, g := range q.GroupBy {
		ok := false
		for _, allowed := range GroupableFields {
			ok = ok || g == allowed
		}
		if !ok {
			return fmt.Errorf("cannot group by %q", g)
		}
	}
	return nil
}

// Run filters t, groups it and computes the metric per group. Without
// grouping a single overall value is returned.
func Run(t *datanorm.Table, q Query) (*Insights, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	work := t.Filter(string(datanorm.FieldMunicipality), q.Municipality)
	work = work.Filter(string(datanorm.FieldSport), q.Sport)

	res := &Insights{Metric: q.Metric, Total: work.Len()}
	if len(q.GroupBy) == 0 {
		v := computeMetric(work, q.Metric)
		res.Value = &v
		return res, nil
	}

	for _, g := range work.GroupBy(q.GroupBy...) {
		share := 0.0
		if res.Total > 0 {
			share = float64(g.Rows.Len()) / float64(res.Total) * 100
		}
		res.Groups = append(res.Groups, InsightRow{
			Label:        g.Label(),
			Value:        computeMetric(g.Rows, q.Metric),
			Clubs:        g.Rows.Len(),
			ShareOfTotal: share,
		})
	}
	return res, nil
}

// computeMetric renders absent values as zero, matching the single-number
// display of the insights view.
func computeMetric(t *datanorm.Table, metric string) float64 {
	orZero := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	switch metric {
	case MetricClubs:
		return float64(t.Len())
	case MetricMembersSum:
		return orZero(sum(numbers(t, datanorm.FieldMembersCount)))
	case MetricMembersAvg:
		return orZero(mean(numbers(t, datanorm.FieldMembersCount)))
	case MetricVolunteersSum:
		return orZero(sum(numbers(t, datanorm.FieldVolunteersCount)))
	case MetricVolunteersAvg:
		return orZero(mean(numbers(t, datanorm.FieldVolunteersCount)))
	case MetricCanteenPct:
		if !t.HasField(datanorm.FieldHasCanteen) {
			return 0
		}
		return orZero(pctTrue(t, datanorm.FieldHasCanteen))
	}
	return 0
}

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
	"github.com/Llorsque/monitor-dashboard-CO/internal/kpi"
	"github.com/Llorsque/monitor-dashboard-CO/internal/session"
)

// KPIView is the KPI overview of a session. Base and Deltas are nil when no
// baseline is loaded.
type KPIView struct {
	CurrentSnapshot *time.Time    `json:"current_snapshot,omitempty"`
	BaseSnapshot    *time.Time    `json:"base_snapshot,omitempty"`
	Current         kpi.CoreKPIs  `json:"current"`
	Base            *kpi.CoreKPIs `json:"base,omitempty"`
	Deltas          *kpi.Deltas   `json:"deltas,omitempty"`
	Configured      []kpi.Metric  `json:"configured"`
}

// KPIs computes core and configured KPIs of the current dataset, with
// deltas against the baseline when one is loaded.
func (s *Service) KPIs(ctx context.Context, sessionID string) (*KPIView, error) {
	st, err := s.state(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st.Current == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDataset, session.SlotCurrent)
	}
	return s.kpiView(st), nil
}

func (s *Service) kpiView(st *session.State) *KPIView {
	cur := st.Current
	v := &KPIView{
		CurrentSnapshot: cur.Snapshot,
		Current:         kpi.Core(cur.Table),
	}
	var baseTable *datanorm.Table
	if st.Base != nil {
		baseTable = st.Base.Table
		base := kpi.Core(baseTable)
		d := kpi.Compare(base, v.Current)
		v.Base, v.Deltas, v.BaseSnapshot = &base, &d, st.Base.Snapshot
	}
	v.Configured = kpi.EvaluateWithDeltas(s.kpis, cur.Table, baseTable)
	if v.Configured == nil {
		v.Configured = []kpi.Metric{}
	}
	return v
}

// Report renders the plain-text KPI report.
func (s *Service) Report(ctx context.Context, sessionID string) (string, error) {
	v, err := s.KPIs(ctx, sessionID)
	if err != nil {
		return "", err
	}
	in := kpi.ReportInput{
		GeneratedAt:     s.now(),
		BaseSnapshot:    v.BaseSnapshot,
		CurrentSnapshot: v.CurrentSnapshot,
		Current:         v.Current,
		Configured:      v.Configured,
	}
	if v.Deltas != nil {
		in.Deltas = *v.Deltas
	}
	return kpi.RenderReport(in), nil
}

// SanitizedExport returns the current dataset without PII as CSV, with a
// suggested filename.
func (s *Service) SanitizedExport(ctx context.Context, sessionID string) ([]byte, string, error) {
	ds, err := s.dataset(ctx, sessionID, session.SlotCurrent)
	if err != nil {
		return nil, "", err
	}
	data, err := datanorm.SanitizedCSV(ds.Table)
	if err != nil {
		return nil, "", fmt.Errorf("write sanitized csv: %w", err)
	}
	day := s.now().UTC()
	if ds.Snapshot != nil {
		day = *ds.Snapshot
	}
	return data, fmt.Sprintf("monitor_sanitized_%s.csv", day.Format("2006-01-02")), nil
}

// SearchClubs finds club names in the current dataset.
func (s *Service) SearchClubs(ctx context.Context, sessionID, q string) ([]string, error) {
	ds, err := s.dataset(ctx, sessionID, session.SlotCurrent)
	if err != nil {
		return nil, err
	}
	return kpi.SearchClubs(ds.Table, q), nil
}

// Club returns the full card of one club, PII included.
func (s *Service) Club(ctx context.Context, sessionID, name string) ([]kpi.Field, error) {
	ds, err := s.dataset(ctx, sessionID, session.SlotCurrent)
	if err != nil {
		return nil, err
	}
	card, ok := kpi.ClubCard(ds.Table, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrClubNotFound, name)
	}
	if card == nil {
		card = []kpi.Field{}
	}
	return card, nil
}

// CompareClubs lists the non-PII fields of two clubs side by side.
func (s *Service) CompareClubs(ctx context.Context, sessionID, a, b string) ([]kpi.FieldDiff, error) {
	ds, err := s.dataset(ctx, sessionID, session.SlotCurrent)
	if err != nil {
		return nil, err
	}
	rowA, ok := kpi.FindClub(ds.Table, a)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrClubNotFound, a)
	}
	rowB, ok := kpi.FindClub(ds.Table, b)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrClubNotFound, b)
	}
	diffs := kpi.FieldDifferences(rowA, rowB)
	if diffs == nil {
		diffs = []kpi.FieldDiff{}
	}
	return diffs, nil
}

// Insights runs a filtered, grouped metric over the current dataset.
func (s *Service) Insights(ctx context.Context, sessionID string, q kpi.Query) (*kpi.Insights, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	ds, err := s.dataset(ctx, sessionID, session.SlotCurrent)
	if err != nil {
		return nil, err
	}
	return kpi.Run(ds.Table, q)
}

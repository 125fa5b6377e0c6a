package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
	"github.com/Llorsque/monitor-dashboard-CO/internal/kpi"
	"github.com/Llorsque/monitor-dashboard-CO/internal/pkg/logger"
	"github.com/Llorsque/monitor-dashboard-CO/internal/session"
	"github.com/Llorsque/monitor-dashboard-CO/internal/storage"
)

// Summary is the PII-free JSON stored next to a published export.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`
	Filename    string    `json:"filename"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	KPIs        *KPIView  `json:"kpis"`
}

// Publish stores the sanitized current dataset and a KPI summary. Only one
// publication per session runs at a time.
func (s *Service) Publish(ctx context.Context, sessionID string) (*storage.Receipt, error) {
	if s.publisher == nil {
		return nil, ErrPublishingDisabled
	}

	lock := s.locks("publish:" + sessionID)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire publish lock: %w", err)
	}
	if !ok {
		return nil, ErrPublishInProgress
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("publish lock release failed", "session", sessionID, "error", err)
		}
	}()

	st, err := s.state(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st.Current == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDataset, session.SlotCurrent)
	}

	sanitized := datanorm.SanitizeDataset(st.Current)
	data, err := datanorm.SanitizedCSV(sanitized.Table)
	if err != nil {
		return nil, fmt.Errorf("write sanitized csv: %w", err)
	}

	now := s.now().UTC()
	receipt, err := s.publisher.Publish(ctx, &storage.Publication{
		SessionID:   sessionID,
		Snapshot:    sanitized.Snapshot,
		PublishedAt: now,
		CSV:         data,
		Summary: Summary{
			GeneratedAt: now,
			Filename:    sanitized.Name,
			Rows:        sanitized.Table.Len(),
			Columns:     sanitized.Table.Columns,
			KPIs:        s.kpiView(st),
		},
	})
	s.metrics.ObservePublication(err)
	if err != nil {
		logger.Error("publication failed", "session", sessionID, "error", err)
		return nil, fmt.Errorf("publish export: %w", err)
	}
	logger.Info("export published",
		"session", sessionID,
		"location", receipt.Location,
		"key", receipt.CSVKey,
		"rows", sanitized.Table.Len(),
		"snapshot", kpi.FormatDate(sanitized.Snapshot, "2006-01-02"),
	)
	return receipt, nil
}

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/audit"
	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
	"github.com/Llorsque/monitor-dashboard-CO/internal/kpi"
	"github.com/Llorsque/monitor-dashboard-CO/internal/metrics"
	"github.com/Llorsque/monitor-dashboard-CO/internal/pkg/distlock"
	"github.com/Llorsque/monitor-dashboard-CO/internal/pkg/logger"
	"github.com/Llorsque/monitor-dashboard-CO/internal/session"
	"github.com/Llorsque/monitor-dashboard-CO/internal/storage"
)

// Options wires a Service. Nil members get in-process defaults.
type Options struct {
	Store     session.Store
	Audit     audit.Recorder
	Publisher storage.Publisher
	Metrics   *metrics.Metrics
	Locks     distlock.Factory
	KPIs      []kpi.Spec
}

// Service implements the dashboard business logic. All public methods are
// safe for concurrent use if the session store is.
type Service struct {
	store     session.Store
	audit     audit.Recorder
	publisher storage.Publisher
	metrics   *metrics.Metrics
	locks     distlock.Factory
	kpis      []kpi.Spec
	now       func() time.Time
}

// NewService creates a dashboard service.
func NewService(opts Options) *Service {
	s := &Service{
		store:     opts.Store,
		audit:     opts.Audit,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		locks:     opts.Locks,
		kpis:      opts.KPIs,
		now:       time.Now,
	}
	if s.store == nil {
		s.store = session.NewMemoryStore(0)
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.locks == nil {
		s.locks = distlock.NewFactory(nil, 0)
	}
	return s
}

// KPISpecs returns the configured KPI list.
func (s *Service) KPISpecs() []kpi.Spec { return s.kpis }

// DatasetInfo describes a loaded dataset without its rows.
type DatasetInfo struct {
	Slot       session.Slot         `json:"slot"`
	Filename   string               `json:"filename"`
	Decoder    string               `json:"decoder"`
	Rows       int                  `json:"rows"`
	Columns    []string             `json:"columns"`
	Snapshot   *time.Time           `json:"snapshot,omitempty"`
	LoadedAt   time.Time            `json:"loaded_at"`
	Collisions []datanorm.Collision `json:"collisions,omitempty"`
	Validation datanorm.Report      `json:"validation"`
}

func describe(slot session.Slot, ds *datanorm.Dataset) *DatasetInfo {
	if ds == nil {
		return nil
	}
	return &DatasetInfo{
		Slot:       slot,
		Filename:   ds.Name,
		Decoder:    ds.Decoder,
		Rows:       ds.Table.Len(),
		Columns:    ds.Table.Columns,
		Snapshot:   ds.Snapshot,
		LoadedAt:   ds.LoadedAt,
		Collisions: ds.Collisions,
		Validation: datanorm.Validate(ds.Table),
	}
}

// Overview lists both slots. A nil member means the slot is empty.
type Overview struct {
	Base    *DatasetInfo `json:"base"`
	Current *DatasetInfo `json:"current"`
}

// state loads the session, treating an unknown session as empty.
func (s *Service) state(ctx context.Context, sessionID string) (*session.State, error) {
	st, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return &session.State{}, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// dataset returns the dataset in slot or ErrNoDataset.
func (s *Service) dataset(ctx context.Context, sessionID string, slot session.Slot) (*datanorm.Dataset, error) {
	st, err := s.state(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ds := st.Dataset(slot)
	if ds == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDataset, slot)
	}
	return ds, nil
}

// Upload decodes data into slot. When decoding fails the slot keeps its
// previous dataset and the *datanorm.LoadError is returned.
func (s *Service) Upload(ctx context.Context, sessionID string, slot session.Slot, filename string, data []byte) (*DatasetInfo, error) {
	if _, err := session.ParseSlot(string(slot)); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	start := s.now()
	ds, err := datanorm.Load(data, filename)
	took := s.now().Sub(start)
	if err != nil {
		s.metrics.ObserveRejected(string(slot), took)
		logger.Warn("dataset rejected",
			"session", sessionID, "slot", slot, "filename", filename, "error", err)
		s.record(ctx, &audit.Entry{
			SessionID: sessionID,
			Slot:      string(slot),
			Filename:  filename,
			Outcome:   audit.OutcomeRejected,
			Cause:     err.Error(),
		})
		return nil, err
	}

	if err := s.store.Put(ctx, sessionID, slot, ds); err != nil {
		return nil, fmt.Errorf("store %s dataset: %w", slot, err)
	}

	info := describe(slot, ds)
	nErr, nWarn := len(info.Validation.Errors), len(info.Validation.Warnings)
	s.metrics.ObserveLoad(string(slot), ds.Decoder, info.Rows, nErr, nWarn, len(ds.Collisions), took)
	logger.Info("dataset loaded",
		"session", sessionID,
		"slot", slot,
		"filename", filename,
		"decoder", ds.Decoder,
		"rows", info.Rows,
		"snapshot", kpi.FormatDate(ds.Snapshot, "2006-01-02"),
		"errors", nErr,
		"warnings", nWarn,
	)
	for _, c := range ds.Collisions {
		logger.Warn("header collision",
			"session", sessionID, "slot", slot, "column", c.Column, "overwritten", c.Overwritten, "kept", c.Kept)
	}
	s.record(ctx, &audit.Entry{
		SessionID: sessionID,
		Slot:      string(slot),
		Filename:  filename,
		Decoder:   ds.Decoder,
		Rows:      info.Rows,
		Snapshot:  ds.Snapshot,
		Errors:    nErr,
		Warnings:  nWarn,
		Outcome:   audit.OutcomeLoaded,
	})
	return info, nil
}

// record writes an audit entry; audit failures never fail the upload.
func (s *Service) record(ctx context.Context, e *audit.Entry) {
	if err := s.audit.Record(ctx, e); err != nil {
		logger.Error("audit record failed", "session", e.SessionID, "slot", e.Slot, "error", err)
	}
}

// Datasets describes both slots of the session.
func (s *Service) Datasets(ctx context.Context, sessionID string) (*Overview, error) {
	st, err := s.state(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Base:    describe(session.SlotBase, st.Base),
		Current: describe(session.SlotCurrent, st.Current),
	}, nil
}

// Clear empties slot.
func (s *Service) Clear(ctx context.Context, sessionID string, slot session.Slot) error {
	if err := s.store.Delete(ctx, sessionID, slot); err != nil {
		return err
	}
	s.metrics.ObserveCleared(string(slot))
	logger.Info("dataset cleared", "session", sessionID, "slot", slot)
	return nil
}

// Validation returns the schema report of slot.
func (s *Service) Validation(ctx context.Context, sessionID string, slot session.Slot) (datanorm.Report, error) {
	ds, err := s.dataset(ctx, sessionID, slot)
	if err != nil {
		return datanorm.Report{}, err
	}
	return datanorm.Validate(ds.Table), nil
}

// Uploads lists the most recent audited uploads of the session.
func (s *Service) Uploads(ctx context.Context, sessionID string, limit int) ([]audit.Entry, error) {
	entries, err := s.audit.Recent(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return entries, nil
}

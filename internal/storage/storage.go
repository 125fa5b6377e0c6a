package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/config"
)

var ErrEmptyPublication = errors.New("publication has no csv content")

// Publication is a sanitized export ready to be stored. Summary must be
// JSON-serializable and free of personal data.
type Publication struct {
	SessionID   string
	Snapshot    *time.Time
	PublishedAt time.Time
	CSV         []byte
	Summary     interface{}
}

// Receipt tells where a publication was stored.
type Receipt struct {
	Location   string    `json:"location"`
	CSVKey     string    `json:"csv_key"`
	SummaryKey string    `json:"summary_key"`
	Bytes      int       `json:"bytes"`
	StoredAt   time.Time `json:"stored_at"`
}

// Publisher stores publications.
type Publisher interface {
	Publish(ctx context.Context, p *Publication) (*Receipt, error)
}

// Pinger is implemented by publishers that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New creates the publisher selected by cfg.Type.
func New(ctx context.Context, cfg config.ExportConfig) (Publisher, error) {
	switch cfg.Type {
	case "aws":
		p, err := NewS3Publisher(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing AWS export storage: %w", err)
		}
		return p, nil
	case "local", "":
		return NewLocalPublisher(cfg.LocalPath)
	}
	return nil, fmt.Errorf("unknown export storage type %q", cfg.Type)
}

// ExportKey returns exports/<snapshot-or-date>/<session>.csv. The folder is
// the snapshot date when known, else the publication date.
func ExportKey(p *Publication) string {
	day := p.PublishedAt
	if p.Snapshot != nil {
		day = *p.Snapshot
	}
	return fmt.Sprintf("exports/%s/%s.csv", day.UTC().Format("2006-01-02"), safeName(p.SessionID))
}

// SummaryKey is the JSON companion of ExportKey.
func SummaryKey(p *Publication) string {
	return strings.TrimSuffix(ExportKey(p), ".csv") + ".json"
}

func safeName(s string) string {
	s = filepath.Base(strings.TrimSpace(s))
	if s == "" || s == "." || s == "/" || s == ".." {
		return "anonymous"
	}
	return s
}

func prepare(p *Publication) error {
	if len(p.CSV) == 0 {
		return ErrEmptyPublication
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	return nil
}

// LocalPublisher writes publications below a directory.
type LocalPublisher struct {
	root string
}

// NewLocalPublisher creates root if needed.
func NewLocalPublisher(root string) (*LocalPublisher, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	return &LocalPublisher{root: root}, nil
}

func (l *LocalPublisher) Publish(_ context.Context, p *Publication) (*Receipt, error) {
	if err := prepare(p); err != nil {
		return nil, err
	}
	csvKey, summaryKey := ExportKey(p), SummaryKey(p)
	if err := l.write(csvKey, p.CSV); err != nil {
		return nil, err
	}

	summary, err := json.MarshalIndent(p.Summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}
	if err := l.write(summaryKey, summary); err != nil {
		return nil, err
	}

	return &Receipt{
		Location:   l.root,
		CSVKey:     csvKey,
		SummaryKey: summaryKey,
		Bytes:      len(p.CSV),
		StoredAt:   time.Now().UTC(),
	}, nil
}

// Ping checks that the export directory still exists.
func (l *LocalPublisher) Ping(context.Context) error {
	fi, err := os.Stat(l.root)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", l.root)
	}
	return nil
}

func (l *LocalPublisher) write(key string, data []byte) error {
	path := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

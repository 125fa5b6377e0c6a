package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Llorsque/monitor-dashboard-CO/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuditRepo(t *testing.T) (*UploadAuditRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUploadAuditRepo(db), mock
}

func TestRecordUpload(t *testing.T) {
	repo, mock := setupAuditRepo(t)
	snap := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO upload_audit")).
		WithArgs(sqlmock.AnyArg(), "sess-1", "current", "leden.xlsx", "excelize", 120, sqlmock.AnyArg(),
			0, 2, "loaded", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := &audit.Entry{
		SessionID: "sess-1",
		Slot:      "current",
		Filename:  "leden.xlsx",
		Decoder:   "excelize",
		Rows:      120,
		Snapshot:  &snap,
		Warnings:  2,
		Outcome:   audit.OutcomeLoaded,
	}
	require.NoError(t, repo.Record(context.Background(), e))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordUploadError(t *testing.T) {
	repo, mock := setupAuditRepo(t)
	mock.ExpectExec("INSERT INTO upload_audit").WillReturnError(errors.New("connection reset"))

	err := repo.Record(context.Background(), &audit.Entry{SessionID: "s", Slot: "base", Outcome: audit.OutcomeRejected})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record upload")
}

func TestRecentUploads(t *testing.T) {
	repo, mock := setupAuditRepo(t)
	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	snap := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "session_id", "slot", "filename", "decoder", "row_count", "snapshot",
		"error_count", "warn_count", "outcome", "cause", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM upload_audit").
		WithArgs("sess-1", 20).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a", "sess-1", "current", "nu.csv", "delimited", 3, snap, 0, 0, "loaded", "", created).
			AddRow("b", "sess-1", "base", "kapot.xlsx", "", 0, nil, 0, 0, "rejected", "zip: not a valid zip file", created))

	got, err := repo.Recent(context.Background(), "sess-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, audit.OutcomeLoaded, got[0].Outcome)
	require.NotNil(t, got[0].Snapshot)
	assert.True(t, got[0].Snapshot.Equal(snap))
	assert.Nil(t, got[1].Snapshot)
	assert.Equal(t, "zip: not a valid zip file", got[1].Cause)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Llorsque/monitor-dashboard-CO/internal/kpi"
	"github.com/Llorsque/monitor-dashboard-CO/internal/pkg/httputil"
	"github.com/Llorsque/monitor-dashboard-CO/internal/service/dashboard"
	"github.com/Llorsque/monitor-dashboard-CO/internal/session"
	"github.com/go-chi/chi/v5"
)

// uploadField is the multipart field carrying the spreadsheet.
const uploadField = "file"

// Handlers contains the dashboard HTTP handlers.
type Handlers struct {
	svc       *dashboard.Service
	maxUpload int64
}

// NewHandlers creates handlers backed by the dashboard service. maxUpload
// caps the request body of an upload in bytes.
func NewHandlers(svc *dashboard.Service, maxUpload int64) *Handlers {
	return &Handlers{svc: svc, maxUpload: maxUpload}
}

// UploadDataset loads a spreadsheet into the base or current slot.
//
//	POST /api/datasets/{slot}   (multipart, field "file")
func (h *Handlers) UploadDataset(w http.ResponseWriter, r *http.Request) {
	slot, err := session.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
			return
		}
		httputil.BadRequest(w, fmt.Sprintf("multipart field %q is required", uploadField))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.BadRequest(w, "could not read upload")
		return
	}

	info, err := h.svc.Upload(r.Context(), SessionID(r.Context()), slot, header.Filename, data)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, info)
}

// ListDatasets describes both slots of the session.
//
//	GET /api/datasets
func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Datasets(r.Context(), SessionID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, overview)
}

// ClearDataset drops one slot.
//
//	DELETE /api/datasets/{slot}
func (h *Handlers) ClearDataset(w http.ResponseWriter, r *http.Request) {
	slot, err := session.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.svc.Clear(r.Context(), SessionID(r.Context()), slot); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

// GetValidation returns the validation report of a slot.
//
//	GET /api/datasets/{slot}/validation
func (h *Handlers) GetValidation(w http.ResponseWriter, r *http.Request) {
	slot, err := session.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	report, err := h.svc.Validation(r.Context(), SessionID(r.Context()), slot)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"slot":     slot,
		"ok":       report.OK(),
		"errors":   nonNil(report.Errors),
		"warnings": nonNil(report.Warnings),
	})
}

// ListUploads returns the session's recent upload history.
//
//	GET /api/uploads?limit=20
func (h *Handlers) ListUploads(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries, err := h.svc.Uploads(r.Context(), SessionID(r.Context()), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"uploads": entries})
}

// GetKPIs returns core and configured KPIs with deltas.
//
//	GET /api/kpis
func (h *Handlers) GetKPIs(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.KPIs(r.Context(), SessionID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, view)
}

// GetKPIConfig returns the configured KPI definitions.
//
//	GET /api/kpis/config
func (h *Handlers) GetKPIConfig(w http.ResponseWriter, r *http.Request) {
	specs := h.svc.KPISpecs()
	if specs == nil {
		specs = []kpi.Spec{}
	}
	httputil.OK(w, map[string]interface{}{"kpis": specs})
}

// GetReport returns the plain-text KPI report.
//
//	GET /api/report.txt
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Report(r.Context(), SessionID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Text(w, http.StatusOK, report)
}

// SearchClubs lists club names containing q.
//
//	GET /api/clubs?q=
func (h *Handlers) SearchClubs(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.SearchClubs(r.Context(), SessionID(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"clubs": nonNil(names)})
}

// GetClub returns the card of one club.
//
//	GET /api/clubs/{name}
func (h *Handlers) GetClub(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	fields, err := h.svc.Club(r.Context(), SessionID(r.Context()), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"name": name, "fields": fields})
}

// CompareClubs lists the fields on which two clubs differ.
//
//	GET /api/compare?a=&b=
func (h *Handlers) CompareClubs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		httputil.BadRequest(w, "query parameters a and b are required")
		return
	}
	diffs, err := h.svc.CompareClubs(r.Context(), SessionID(r.Context()), a, b)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"a": a, "b": b, "differences": nonNil(diffs)})
}

// GetInsights filters, groups and aggregates the current dataset.
//
//	GET /api/insights?group=sport&municipality=Utrecht&metric=members_sum
func (h *Handlers) GetInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := kpi.Query{
		GroupBy:      listParam(q, "group"),
		Municipality: listParam(q, "municipality"),
		Sport:        listParam(q, "sport"),
		Metric:       q.Get("metric"),
	}
	if query.Metric == "" {
		query.Metric = kpi.MetricClubs
	}
	res, err := h.svc.Insights(r.Context(), SessionID(r.Context()), query)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, res)
}

// DownloadSanitized returns the current dataset without PII columns.
//
//	GET /api/export/sanitized.csv
func (h *Handlers) DownloadSanitized(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.svc.SanitizedExport(r.Context(), SessionID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Attachment(w, "text/csv; charset=utf-8", filename, data)
}

// Publish stores the sanitized dataset and KPI summary in export storage.
//
//	POST /api/export/publish
func (h *Handlers) Publish(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.svc.Publish(r.Context(), SessionID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, receipt)
}

// pathParam returns a decoded URL parameter. Names may contain escaped
// slashes, which chi leaves encoded.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// listParam accepts both repeated and comma-separated values.
func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

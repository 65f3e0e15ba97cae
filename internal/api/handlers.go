package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pmmstack/pmm-engine/internal/metrics"
	"github.com/pmmstack/pmm-engine/internal/models"
	"github.com/pmmstack/pmm-engine/internal/services"
	"github.com/pmmstack/pmm-engine/internal/store"
	"github.com/pmmstack/pmm-engine/internal/utils"
)

// Handlers exposes the monitoring service over JSON HTTP.
type Handlers struct {
	service *services.MonitorService
	logger  *slog.Logger
}

// NewHandlers wires the handler set to its service.
func NewHandlers(service *services.MonitorService, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{service: service, logger: logger}
}

// Router builds the HTTP route table.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/interactions/log", h.logInteraction).Methods(http.MethodPost)
	v1.HandleFunc("/feedback/submit", h.submitFeedback).Methods(http.MethodPost)

	v1.HandleFunc("/metrics/current", h.currentMetrics).Methods(http.MethodGet)
	v1.HandleFunc("/metrics/query", h.queryMetric).Methods(http.MethodGet)

	v1.HandleFunc("/alerts/active", h.activeAlerts).Methods(http.MethodGet)
	v1.HandleFunc("/alerts/{id}/resolve", h.resolveAlert).Methods(http.MethodPost)

	v1.HandleFunc("/signals/detect", h.detectSignals).Methods(http.MethodPost)
	v1.HandleFunc("/signals/active", h.activeSignals).Methods(http.MethodGet)
	v1.HandleFunc("/signals/history", h.signalHistory).Methods(http.MethodGet)
	v1.HandleFunc("/signals/{id}/acknowledge", h.acknowledgeSignal).Methods(http.MethodPost)
	v1.HandleFunc("/signals/{id}/resolve", h.resolveSignal).Methods(http.MethodPost)

	v1.HandleFunc("/trends/metrics", h.allTrends).Methods(http.MethodGet)
	v1.HandleFunc("/trends/forecast", h.forecast).Methods(http.MethodGet)

	v1.HandleFunc("/complaints", h.createComplaint).Methods(http.MethodPost)
	v1.HandleFunc("/complaints", h.listComplaints).Methods(http.MethodGet)
	v1.HandleFunc("/complaints/analytics", h.complaintAnalytics).Methods(http.MethodGet)
	v1.HandleFunc("/complaints/{id}", h.getComplaint).Methods(http.MethodGet)
	v1.HandleFunc("/complaints/{id}", h.updateComplaint).Methods(http.MethodPut)

	v1.HandleFunc("/performance/realtime", h.performanceRealtime).Methods(http.MethodGet)
	v1.HandleFunc("/performance/history", h.performanceHistory).Methods(http.MethodGet)
	v1.HandleFunc("/performance/snapshot", h.captureSnapshot).Methods(http.MethodPost)
	v1.HandleFunc("/performance/sla", h.slaStatus).Methods(http.MethodGet)

	v1.HandleFunc("/dashboard/overview", h.overview).Methods(http.MethodGet)
	v1.HandleFunc("/dashboard/kpis", h.kpis).Methods(http.MethodGet)

	v1.HandleFunc("/regulatory/compliance-status", h.complianceStatus).Methods(http.MethodGet)
	v1.HandleFunc("/regulatory/reports/generate", h.generateReport).Methods(http.MethodPost)
	v1.HandleFunc("/regulatory/reports", h.listReports).Methods(http.MethodGet)
	v1.HandleFunc("/regulatory/reports/{id}", h.getReport).Methods(http.MethodGet)

	return r
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.ObserveHTTPRequest(r.Method, route, time.Since(started))
	})
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) logInteraction(w http.ResponseWriter, r *http.Request) {
	var in models.Interaction
	if !decodeBody(w, r, &in) {
		return
	}
	summary, err := h.service.LogInteraction(in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (h *Handlers) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var fb models.Feedback
	if !decodeBody(w, r, &fb) {
		return
	}
	stored, err := h.service.SubmitFeedback(fb)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (h *Handlers) currentMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.CurrentMetrics())
}

func (h *Handlers) queryMetric(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("metric")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("metric query parameter is required"))
		return
	}
	period, ok := parsePeriod(w, r, 24*time.Hour)
	if !ok {
		return
	}
	points := h.service.MetricWindow(name, period)
	writeJSON(w, http.StatusOK, map[string]any{
		"metric": name,
		"points": points,
		"count":  len(points),
	})
}

func (h *Handlers) activeAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts := h.service.ActiveAlerts()
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

func (h *Handlers) resolveAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResolveAlert(mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

func (h *Handlers) detectSignals(w http.ResponseWriter, _ *http.Request) {
	signals := h.service.RunDetection()
	writeJSON(w, http.StatusOK, map[string]any{"signals": signals, "count": len(signals)})
}

func (h *Handlers) activeSignals(w http.ResponseWriter, _ *http.Request) {
	signals := h.service.ActiveSignals()
	writeJSON(w, http.StatusOK, map[string]any{"signals": signals, "count": len(signals)})
}

func (h *Handlers) signalHistory(w http.ResponseWriter, r *http.Request) {
	status := models.SignalStatus(r.URL.Query().Get("status"))

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := utils.ParseRFC3339(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid since timestamp"))
			return
		}
		since = parsed
	}

	signals := h.service.SignalHistory(status, since)
	writeJSON(w, http.StatusOK, map[string]any{"signals": signals, "count": len(signals)})
}

func (h *Handlers) acknowledgeSignal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AcknowledgedBy string `json:"acknowledged_by"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	sig, err := h.service.AcknowledgeSignal(mux.Vars(r)["id"], body.AcknowledgedBy)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

func (h *Handlers) resolveSignal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FalsePositive bool `json:"false_positive"`
	}
	if r.ContentLength > 0 && !decodeBody(w, r, &body) {
		return
	}
	sig, err := h.service.ResolveSignal(mux.Vars(r)["id"], body.FalsePositive)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

func (h *Handlers) allTrends(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.TrendAll())
}

func (h *Handlers) forecast(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("metric")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("metric query parameter is required"))
		return
	}
	analysis, ok := h.service.TrendFor(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no data for metric "+name))
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *Handlers) createComplaint(w http.ResponseWriter, r *http.Request) {
	var c models.Complaint
	if !decodeBody(w, r, &c) {
		return
	}
	created, err := h.service.CreateComplaint(r.Context(), c)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listComplaints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := models.ComplaintStatus(q.Get("status"))
	priority := models.ComplaintPriority(q.Get("priority"))

	var since time.Time
	if raw := q.Get("since"); raw != "" {
		parsed, err := utils.ParseRFC3339(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid since timestamp"))
			return
		}
		since = parsed
	}

	complaints := h.service.ListComplaints(status, priority, since)
	writeJSON(w, http.StatusOK, map[string]any{"complaints": complaints, "count": len(complaints)})
}

func (h *Handlers) getComplaint(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetComplaint(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) updateComplaint(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status     models.ComplaintStatus   `json:"status"`
		Priority   models.ComplaintPriority `json:"priority"`
		AssignedTo string                   `json:"assigned_to"`
		Resolution string                   `json:"resolution"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	updated, err := h.service.UpdateComplaint(r.Context(), mux.Vars(r)["id"], store.ComplaintUpdateRequest{
		Status:     body.Status,
		Priority:   body.Priority,
		AssignedTo: body.AssignedTo,
		Resolution: body.Resolution,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) complaintAnalytics(w http.ResponseWriter, r *http.Request) {
	periodDays := 30
	if raw := r.URL.Query().Get("period_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid period_days"))
			return
		}
		periodDays = parsed
	}
	writeJSON(w, http.StatusOK, h.service.ComplaintAnalytics(r.Context(), periodDays))
}

func (h *Handlers) performanceRealtime(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.PerformanceRealtime())
}

func (h *Handlers) performanceHistory(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r, 24*time.Hour)
	if !ok {
		return
	}
	snapshots := h.service.PerformanceHistory(period)
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snapshots, "count": len(snapshots)})
}

func (h *Handlers) captureSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap models.PerformanceSnapshot
	if r.ContentLength > 0 && !decodeBody(w, r, &snap) {
		return
	}
	writeJSON(w, http.StatusCreated, h.service.CapturePerformanceSnapshot(snap))
}

func (h *Handlers) slaStatus(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r, 24*time.Hour)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.SLAStatus(r.Context(), period))
}

func (h *Handlers) overview(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Overview())
}

func (h *Handlers) kpis(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.KPIs())
}

func (h *Handlers) complianceStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ComplianceStatus())
}

func (h *Handlers) generateReport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReportType models.ReportType `json:"report_type"`
		PeriodDays int               `json:"period_days"`
	}
	if r.ContentLength > 0 && !decodeBody(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusCreated, h.service.GenerateReport(body.ReportType, body.PeriodDays))
}

func (h *Handlers) listReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reports := h.service.Reports(models.ReportType(q.Get("type")), models.ReportStatus(q.Get("status")))
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports, "count": len(reports)})
}

func (h *Handlers) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Report(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, services.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func parsePeriod(w http.ResponseWriter, r *http.Request, fallback time.Duration) (time.Duration, bool) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return fallback, true
	}
	period, err := time.ParseDuration(raw)
	if err != nil || period <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid period"))
		return 0, false
	}
	return period, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

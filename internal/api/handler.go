package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/voltwatch/voltwatch/internal/alerts"
	"github.com/voltwatch/voltwatch/internal/monitor"
	"github.com/voltwatch/voltwatch/internal/telemetry"
	"github.com/voltwatch/voltwatch/internal/window"
)

// maxBodyBytes caps request bodies; telemetry payloads are tiny.
const maxBodyBytes = 1 << 20

// Handler serves all /api/v1/* endpoints.
type Handler struct {
	monitor   *monitor.Monitor
	evaluator *alerts.Evaluator
	windows   *window.Store
	router    *mux.Router
}

// New creates a Handler wired to the monitor and registers all routes.
// metricsHandler, when non-nil, is mounted at /metrics.
func New(m *monitor.Monitor, ev *alerts.Evaluator, win *window.Store, metricsHandler http.Handler) http.Handler {
	h := &Handler{monitor: m, evaluator: ev, windows: win}

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/readings", h.createReading).Methods(http.MethodPost)
	v1.HandleFunc("/batteries", h.registerBattery).Methods(http.MethodPost)
	v1.HandleFunc("/batteries", h.listBatteries).Methods(http.MethodGet)
	v1.HandleFunc("/batteries/{id}", h.getBattery).Methods(http.MethodGet)
	v1.HandleFunc("/batteries/{id}/health", h.getHealth).Methods(http.MethodGet)
	v1.HandleFunc("/batteries/{id}/analytics", h.getAnalytics).Methods(http.MethodGet)
	v1.HandleFunc("/fleet", h.fleet).Methods(http.MethodGet)
	v1.HandleFunc("/thresholds", h.getThresholds).Methods(http.MethodGet)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// createReading handles POST /api/v1/readings.
func (h *Handler) createReading(w http.ResponseWriter, r *http.Request) {
	var reading telemetry.Reading
	if err := decodeJSON(w, r, &reading); err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	accepted, err := h.monitor.Ingest(r.Context(), reading)
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusCreated, accepted)
}

// registerBattery handles POST /api/v1/batteries.
func (h *Handler) registerBattery(w http.ResponseWriter, r *http.Request) {
	var b telemetry.Battery
	if err := decodeJSON(w, r, &b); err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.monitor.RegisterBattery(r.Context(), b)
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusCreated, saved)
}

// listBatteries handles GET /api/v1/batteries.
func (h *Handler) listBatteries(w http.ResponseWriter, r *http.Request) {
	bs, err := h.monitor.Batteries(r.Context())
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	if bs == nil {
		bs = []telemetry.Battery{}
	}
	jsonResp(w, http.StatusOK, bs)
}

// getBattery handles GET /api/v1/batteries/{id}.
func (h *Handler) getBattery(w http.ResponseWriter, r *http.Request) {
	b, err := h.monitor.Battery(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, b)
}

// getHealth handles GET /api/v1/batteries/{id}/health.
func (h *Handler) getHealth(w http.ResponseWriter, r *http.Request) {
	p, err := h.monitor.PredictHealth(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, p)
}

// getAnalytics handles GET /api/v1/batteries/{id}/analytics?start=&end=.
// Bounds are RFC3339; both are optional and default to all history.
func (h *Handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam(r, "start")
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := h.monitor.Analytics(r.Context(), mux.Vars(r)["id"], start, end)
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, sum)
}

// fleet handles GET /api/v1/fleet.
func (h *Handler) fleet(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, BuildFleet(h.windows, h.evaluator))
}

// getThresholds handles GET /api/v1/thresholds.
func (h *Handler) getThresholds(w http.ResponseWriter, _ *http.Request) {
	t := h.evaluator.Thresholds()
	jsonResp(w, http.StatusOK, ThresholdsResponse{
		LowVoltage:      t.LowVoltage,
		HighTemperature: t.HighTemperature,
		LowSoC:          t.LowSoC,
	})
}

// --- helpers ----------------------------------------------------------------

// BuildFleet assembles the live fleet overview from the rolling windows.
// Exported for reuse by the WebSocket hub.
func BuildFleet(win *window.Store, ev *alerts.Evaluator) FleetResponse {
	ids := win.Batteries()
	resp := FleetResponse{
		Batteries:   make([]BatteryStatus, 0, len(ids)),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, id := range ids {
		snap := win.Snapshot(id)
		if len(snap) == 0 {
			continue
		}
		latest := snap[len(snap)-1]

		st := BatteryStatus{
			BatteryID:   id,
			Voltage:     latest.Voltage,
			Current:     latest.Current,
			Temperature: latest.Temperature,
			SoC:         latest.SoC,
			SampleCount: len(snap),
			LastSeen:    latest.Timestamp.UTC().Format(time.RFC3339),
		}
		for _, a := range ev.Evaluate(latest) {
			st.Breaches = append(st.Breaches, a.Type)
		}
		if len(st.Breaches) > 0 {
			resp.AlertingCount++
		}
		resp.Batteries = append(resp.Batteries, st)
	}
	resp.BatteryCount = len(resp.Batteries)
	return resp
}

// statusFor maps an engine error to an HTTP status code.
func statusFor(err error) int {
	var ve *telemetry.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, telemetry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, telemetry.ErrDependencyTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, telemetry.ErrModelUnavailable),
		errors.Is(err, telemetry.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func jsonResp(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, status int, msg string) {
	jsonResp(w, status, errorResponse{Error: msg})
}

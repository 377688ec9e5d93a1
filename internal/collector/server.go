// Package collector implements the receiving end of the node's wire protocol:
// the batch-upload endpoint and the identity lookup the node bootstraps from.
package collector

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type uploadSample struct {
	Time         int64   `json:"time"`
	TemperatureC float64 `json:"temperature_C"`
	HumidityPerc float64 `json:"humidity_perc"`
}

type uploadRequest struct {
	Password   string         `json:"clowny-cleartext-password"`
	SensorName string         `json:"sensorname"`
	SensorData []uploadSample `json:"sensordata"`
}

type handler struct {
	cfg   Config
	store *Store
	log   *slog.Logger
}

func NewMux(cfg Config, store *Store, log *slog.Logger) *http.ServeMux {
	h := &handler{cfg: cfg, store: store, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /data", h.handleData)
	mux.HandleFunc("GET /sensorname", h.handleSensorName)
	return mux
}

func (h *handler) handleData(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("malformed upload", "error", err)
		writeError(w, http.StatusBadRequest, "malformed upload document")
		return
	}

	if req.Password == "" || req.Password != h.cfg.Password {
		h.log.Warn("bad or missing password, denying request", "sensor", req.SensorName)
		writeError(w, http.StatusForbidden, "denied")
		return
	}

	readings := make([]Reading, 0, len(req.SensorData))
	for _, s := range req.SensorData {
		readings = append(readings, Reading{
			Time:         s.Time,
			TemperatureC: s.TemperatureC,
			HumidityPct:  s.HumidityPerc,
		})
	}

	if err := h.store.InsertBatch(req.SensorName, readings); err != nil {
		h.log.Error("insert batch failed", "sensor", req.SensorName, "error", err)
		// 501 is what uploaders in the field already expect on storage
		// failure; they retain the batch and retry.
		writeError(w, http.StatusNotImplemented, "storage failure")
		return
	}

	h.log.Info("batch stored", "sensor", req.SensorName, "samples", len(readings))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleSensorName(w http.ResponseWriter, r *http.Request) {
	mac := r.URL.Query().Get("macaddr")
	if mac == "" {
		writeError(w, http.StatusBadRequest, "missing macaddr")
		return
	}
	name, ok := h.cfg.Sensors[mac]
	if !ok {
		h.log.Warn("identity lookup for unknown mac", "macaddr", mac)
		writeError(w, http.StatusNotFound, "unknown macaddr")
		return
	}

	// The node takes the raw body as its name; no JSON wrapping.
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(name)); err != nil {
		h.log.Error("write sensorname response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

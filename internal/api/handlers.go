package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/foorschtbar/BeamerControl/internal/bridge"
	"github.com/foorschtbar/BeamerControl/internal/device"
	"github.com/foorschtbar/BeamerControl/internal/infrastructure/wireless"
	"github.com/foorschtbar/BeamerControl/internal/settings"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Hostname    string            `json:"hostname"`
	Note        string            `json:"note"`
	Model       string            `json:"model"`
	Power       device.PowerState `json:"power"`
	Bus         string            `json:"bus"`
	WifiRSSI    int               `json:"wifi_rssi"`
	WifiQuality int               `json:"wifi_quality"`
	Version     string            `json:"version"`
}

// PowerRequest is the body of POST /power.
type PowerRequest struct {
	State string `json:"state"`
}

// handleStatus returns the reconciled power state and bridge identity.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Hostname: s.identity.Hostname,
		Note:     s.identity.Note,
		Model:    s.identity.ModelLabel,
		Power:    s.power.State(),
		Bus:      s.bus.State().String(),
		Version:  s.version,
	}
	if s.rssi != nil {
		resp.WifiRSSI = s.rssi()
		resp.WifiQuality = wireless.Quality(resp.WifiRSSI)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePower queues a web power request. The state is not changed here;
// the next poll reports the outcome.
func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	var req PowerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	target, err := device.ParsePowerState(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, `state must be "on" or "off"`)
		return
	}

	err = s.submitter.Submit(bridge.Intent{Kind: bridge.IntentWebPower, On: target == device.PowerOn})
	if errors.Is(err, bridge.ErrBusy) {
		writeError(w, http.StatusServiceUnavailable, ErrCodeBusy, "bridge busy, try again")
		return
	}
	if err != nil {
		writeInternalError(w, "failed to queue request")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"requested": target,
		"current":   s.power.State(),
	})
}

// handleHistory lists recorded power transitions, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "state history unavailable")
		return
	}

	limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	entries, err := s.history.GetHistory(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read state history", "error", err)
		writeInternalError(w, "failed to read state history")
		return
	}
	if entries == nil {
		entries = []device.StateHistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// parseHistoryLimit parses the limit query parameter with bounds enforcement.
func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if limit > maxHistoryLimit {
		return 0, fmt.Errorf("limit exceeds maximum")
	}
	return limit, nil
}

// handleGetSettings returns the stored overrides. A missing or outdated
// record is reported as empty.
func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	if s.settings == nil {
		writeUnavailable(w, "settings store unavailable")
		return
	}

	o, err := s.settings.Load()
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"settings": o, "stored": true})
	case errors.Is(err, settings.ErrNotFound), errors.Is(err, settings.ErrVersionMismatch):
		writeJSON(w, http.StatusOK, map[string]any{"settings": settings.Overrides{}, "stored": false})
	default:
		s.logger.Error("failed to load settings", "error", err)
		writeInternalError(w, "failed to load settings")
	}
}

// handlePutSettings replaces the stored overrides. They apply at the next start.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeUnavailable(w, "settings store unavailable")
		return
	}

	var o settings.Overrides
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	saved, err := s.settings.Save(o)
	if errors.Is(err, settings.ErrInvalid) {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("failed to save settings", "error", err)
		writeInternalError(w, "failed to save settings")
		return
	}

	s.logger.Info("settings saved, restart to apply")
	writeJSON(w, http.StatusOK, map[string]any{
		"settings":         saved,
		"restart_required": true,
	})
}

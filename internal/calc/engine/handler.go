package engine

import (
	"context"
	"encoding/json"
	"net/http"

	"Erosion/internal/auth"
	"Erosion/internal/calc/schema"
	"Erosion/internal/repo"

	log "github.com/sirupsen/logrus"
)

// MaxRequestBytes bounds a request document read from HTTP.
const MaxRequestBytes = 4 << 20

type Handler struct {
	Engine *Engine
	Runs   repo.Runs // optional; runs of authenticated users are stored when set
}

// StatusOf maps a response to its HTTP status.
func StatusOf(resp schema.Response) int {
	if resp.CalculationResponse.Status.Success {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

// Decode reads a request document from the body.
func Decode(w http.ResponseWriter, r *http.Request) (schema.Request, bool) {
	var req schema.Request
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	req, ok := Decode(w, r)
	if !ok {
		return
	}
	resp := h.Engine.Run(r.Context(), req, nil)
	h.Record(r.Context(), req, resp)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusOf(resp))
	json.NewEncoder(w).Encode(resp)
}

// Types lists the registered component types.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	types := h.Engine.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"component_types":            out,
		"dnv_rp_version":             h.Engine.tables.Version(),
		"calculation_engine_version": Version,
	})
}

// Record stores a finished run for the authenticated user. Storage failures are logged only.
func (h *Handler) Record(ctx context.Context, req schema.Request, resp schema.Response) {
	if h.Runs == nil {
		return
	}
	userID, ok := auth.UserID(ctx)
	if !ok {
		return
	}
	reqDoc, err := json.Marshal(req)
	if err != nil {
		log.WithError(err).Error("encode request for history")
		return
	}
	respDoc, err := json.Marshal(resp)
	if err != nil {
		log.WithError(err).Error("encode response for history")
		return
	}
	out := resp.CalculationResponse
	run := repo.Run{
		UserID:    userID,
		RequestID: out.Metadata.RequestID,
		Success:   out.Status.Success,
		Request:   reqDoc,
		Response:  respDoc,
	}
	if out.SystemSummary != nil {
		run.RiskLevel = out.SystemSummary.OverallRiskAssessment.SystemRiskLevel
	}
	id, err := h.Runs.SaveRun(ctx, run)
	if err != nil {
		log.WithError(err).WithField("request_id", run.RequestID).Error("store erosion run")
		return
	}
	log.WithFields(log.Fields{"run_id": id, "user_id": userID, "request_id": run.RequestID}).Debug("erosion run stored")
}

package batch

import (
	"encoding/json"
	"net/http"

	"Erosion/internal/calc/engine"
)

type Handler struct {
	Calc        *engine.Handler
	MaxRequests int
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var input Input
	r.Body = http.MaxBytesReader(w, r.Body, 8*engine.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	limit := h.MaxRequests
	if limit == 0 {
		limit = DefaultMaxRequests
	}
	res, err := Calculate(r.Context(), h.Calc.Engine, input, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for i, resp := range res.Responses {
		h.Calc.Record(r.Context(), input.Requests[i], resp)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

package report

import (
	"bytes"
	"net/http"

	"Erosion/internal/calc/engine"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Calc *engine.Handler
}

// Generate runs a request and answers with its PDF report.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	req, ok := engine.Decode(w, r)
	if !ok {
		return
	}
	resp := h.Calc.Engine.Run(r.Context(), req, nil)
	h.Calc.Record(r.Context(), req, resp)

	var buf bytes.Buffer
	if err := Render(&buf, req.CalculationRequest, resp); err != nil {
		log.WithError(err).Error("render erosion report")
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"erosion-report.pdf\"")
	w.Write(buf.Bytes())
}

package sheet

import (
	"encoding/json"
	"net/http"

	"Erosion/internal/calc/engine"

	log "github.com/sirupsen/logrus"
)

const maxUploadSize = 10 << 20

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Calc *engine.Handler
}

// Import runs the request held in an uploaded workbook and answers with the JSON response.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	req, err := Import(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp := h.Calc.Engine.Run(r.Context(), req, nil)
	h.Calc.Record(r.Context(), req, resp)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(engine.StatusOf(resp))
	json.NewEncoder(w).Encode(resp)
}

// Export runs a JSON request and answers with the results workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	req, ok := engine.Decode(w, r)
	if !ok {
		return
	}
	resp := h.Calc.Engine.Run(r.Context(), req, nil)
	h.Calc.Record(r.Context(), req, resp)

	f, err := Export(resp)
	if err != nil {
		log.WithError(err).Error("build results workbook")
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		log.WithError(err).Error("write results workbook")
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", "attachment; filename=\"erosion-results.xlsx\"")
	w.Write(buf.Bytes())
}

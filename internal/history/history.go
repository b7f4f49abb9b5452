package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"Erosion/internal/auth"
	"Erosion/internal/calc/report"
	"Erosion/internal/calc/schema"
	"Erosion/internal/repo"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxLimit = 200

type Handler struct {
	Runs repo.Runs
}

// List answers the newest runs of the caller, without documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}
	runs, err := h.Runs.ListRuns(r.Context(), userID, limit)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("list erosion runs")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	run, ok := h.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// Report renders the PDF of a stored run.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	run, ok := h.load(w, r)
	if !ok {
		return
	}
	var req schema.Request
	var resp schema.Response
	if err := json.Unmarshal(run.Request, &req); err != nil {
		http.Error(w, "Stored run is unreadable", http.StatusInternalServerError)
		return
	}
	if err := json.Unmarshal(run.Response, &resp); err != nil {
		http.Error(w, "Stored run is unreadable", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, req.CalculationRequest, resp); err != nil {
		log.WithError(err).WithField("run_id", run.ID).Error("render stored run")
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"erosion-run-%d.pdf\"", run.ID))
	w.Write(buf.Bytes())
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (repo.Run, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return repo.Run{}, false
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid run id", http.StatusBadRequest)
		return repo.Run{}, false
	}
	run, err := h.Runs.GetRun(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return repo.Run{}, false
	}
	if err != nil {
		log.WithError(err).WithField("run_id", id).Error("load erosion run")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return repo.Run{}, false
	}
	return run, true
}

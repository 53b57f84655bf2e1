package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/mkravets/effidash/internal/core/domain"
)

func (rt *Router) getMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	metrics, err := rt.dashboard.Metrics(r.Context(), r.URL.Query().Get("department"), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// getTrends keeps the endpoint shape the dashboard polls; time-series data
// is not collected yet, so every series is empty.
func (rt *Router) getTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trends": map[string]any{
			"throughput":            []float64{},
			"deliveredRequirements": []float64{},
			"newRequirements":       []float64{},
			"deliveryCycle":         []float64{},
			"onlineDefects":         []float64{},
			"reopenRate":            []float64{},
			"codeEquivalent":        []float64{},
		},
	})
}

func (rt *Router) getRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	rankings, err := rt.dashboard.Rankings(
		r.Context(),
		query.Get("department"),
		query.Get("date"),
		query.Get("type"),
		query.Get("sort"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	if rankings == nil {
		rankings = []domain.RankingEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rankings": rankings})
}

func (rt *Router) getProjectDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	details, err := rt.dashboard.ProjectDetails(r.Context(), r.URL.Query().Get("department"), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	if details == nil {
		details = []domain.ProjectDetail{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"details": details})
}

func (rt *Router) getDepartments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	departments, err := rt.dashboard.Departments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": departments})
}

func (rt *Router) getDateRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	dates, err := rt.dashboard.DateRange(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

func (rt *Router) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := rt.dashboard.GetSettings(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPost:
		var settings domain.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if err := rt.dashboard.SaveSettings(r.Context(), &settings); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		methodNotAllowed(w)
	}
}

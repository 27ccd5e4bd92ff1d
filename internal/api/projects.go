package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/quarterpay/internal/scoring"
)

type ProjectsHandler struct {
	calc *scoring.Calculator
}

func NewProjectsHandler(calc *scoring.Calculator) *ProjectsHandler {
	return &ProjectsHandler{calc: calc}
}

type ProjectInfo struct {
	Name      string            `json:"name"`
	Aliases   []string          `json:"aliases"`
	Weights   scoring.WeightSet `json:"weights"`
	WeightSum float64           `json:"weight_sum"`
}

func (h *ProjectsHandler) info(name string) (ProjectInfo, error) {
	catalog := h.calc.Catalog()
	w, err := catalog.Lookup(name)
	if err != nil {
		return ProjectInfo{}, err
	}
	canonical := catalog.Canonical(name)
	aliases := []string{}
	for alias, target := range catalog.Aliases() {
		if target == canonical {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return ProjectInfo{Name: canonical, Aliases: aliases, Weights: w, WeightSum: w.Sum()}, nil
}

// List returns every catalog entry, sorted by name.
// GET /api/v1/projects
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	keys := h.calc.Catalog().Keys()
	out := make([]ProjectInfo, 0, len(keys))
	for _, k := range keys {
		p, err := h.info(k)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one catalog entry by name or alias.
// GET /api/v1/projects/{key}
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.info(chi.URLParam(r, "key"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":      err.Error(),
			"known_keys": h.calc.Catalog().Keys(),
		})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Coefficients returns the active coefficient table.
// GET /api/v1/coefficients
func (h *ProjectsHandler) Coefficients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.calc.Coefficients())
}

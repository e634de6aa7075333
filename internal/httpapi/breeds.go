package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"breedd/internal/breeds"
)

// handleListBreeds godoc
// @Summary      List breeds
// @Tags         breeds
// @Produce      json
// @Param        animal_type          query string false "cattle or buffalo"
// @Param        state                query string false "Native state (exact)"
// @Param        conservation_status  query string false "Substring of the conservation status"
// @Success      200 {object} types.BreedListResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/breeds [get]
func (s *server) handleListBreeds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.catalog.List(breeds.Filter{
		AnimalType:         q.Get("animal_type"),
		State:              q.Get("state"),
		ConservationStatus: q.Get("conservation_status"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleGetBreed godoc
// @Summary      Breed details
// @Tags         breeds
// @Produce      json
// @Param        breed_id path string true "Breed id, e.g. Gir or murrah"
// @Success      200 {object} types.Breed
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/breeds/{breed_id} [get]
func (s *server) handleGetBreed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "breed_id")
	b, err := s.catalog.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.tracker.RecordBreedView(b.ID)
	writeJSON(w, b)
}

// handleBreedsByState godoc
// @Summary      Breeds native to a state
// @Tags         breeds
// @Produce      json
// @Param        state_name path string true "State name, matched exactly then partially"
// @Success      200 {object} types.StateBreedsResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/breeds/state/{state_name} [get]
func (s *server) handleBreedsByState(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.ByState(chi.URLParam(r, "state_name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleStates godoc
// @Summary      States with native breeds
// @Tags         breeds
// @Produce      json
// @Success      200 {object} types.StatesResponse
// @Router       /api/v1/states [get]
func (s *server) handleStates(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.States()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleSchemes godoc
// @Summary      Government schemes
// @Tags         breeds
// @Produce      json
// @Success      200 {object} types.SchemesResponse
// @Router       /api/v1/government-schemes [get]
func (s *server) handleSchemes(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Schemes()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleCompare godoc
// @Summary      Compare two breeds
// @Tags         comparison
// @Produce      json
// @Param        breed1 query string true "First breed id"
// @Param        breed2 query string true "Second breed id"
// @Success      200 {object} types.CompareResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/compare [get]
func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b1, b2 := q.Get("breed1"), q.Get("breed2")
	if b1 == "" || b2 == "" {
		writeJSONError(w, http.StatusBadRequest, "breed1 and breed2 are required")
		return
	}
	res, err := s.catalog.Compare(b1, b2)
	if err != nil {
		writeError(w, err)
		return
	}
	s.tracker.RecordComparison()
	writeJSON(w, res)
}

// handleCompareMulti godoc
// @Summary      Compare 2 to 4 breeds
// @Tags         comparison
// @Produce      json
// @Param        breeds query string true "Comma separated breed ids"
// @Success      200 {object} types.MultiCompareResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/compare/multi [get]
func (s *server) handleCompareMulti(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("breeds")
	if strings.TrimSpace(raw) == "" {
		writeJSONError(w, http.StatusBadRequest, "breeds is required")
		return
	}
	res, err := s.catalog.CompareMulti(breeds.ParseIDs(raw))
	if err != nil {
		writeError(w, err)
		return
	}
	s.tracker.RecordComparison()
	writeJSON(w, res)
}

// handleRanking godoc
// @Summary      Breeds ranked by carbon score
// @Tags         comparison
// @Produce      json
// @Param        animal_type query string false "cattle or buffalo"
// @Param        limit       query int    false "Number of results (default 10)"
// @Success      200 {object} types.RankingResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/sustainability-ranking [get]
func (s *server) handleRanking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := breeds.DefaultRankingLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	res, err := s.catalog.Ranking(q.Get("animal_type"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleAnalytics godoc
// @Summary      Usage analytics since start
// @Tags         analytics
// @Produce      json
// @Param        top query int false "Number of top breeds (default 5)"
// @Success      200 {object} types.AnalyticsSummary
// @Router       /api/v1/analytics/summary [get]
func (s *server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	top := 5
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = n
	}
	writeJSON(w, s.tracker.Summary(top))
}

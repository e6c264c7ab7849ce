package zone

import (
	"net/http"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/httputil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	RiskLevel         int         `json:"risk_level"`
	IsUnderPremises   bool        `json:"is_under_premises"`
	PopulationDensity float64     `json:"population_density"`
	Coordinates       Coordinates `json:"coordinates"`
}

type updateRequest struct {
	Name              *string     `json:"name"`
	Description       *string     `json:"description"`
	RiskLevel         *int        `json:"risk_level"`
	IsUnderPremises   *bool       `json:"is_under_premises"`
	PopulationDensity *float64    `json:"population_density"`
	Coordinates       Coordinates `json:"coordinates"`
}

type polygonRequest struct {
	Coordinates Coordinates `json:"coordinates"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.Name == "" {
		httputil.WriteError(w, r, apperr.Invalid("name is required"))
		return
	}

	z, err := h.svc.Create(r.Context(), CreateInput{
		Name:              req.Name,
		Description:       req.Description,
		RiskLevel:         req.RiskLevel,
		IsUnderPremises:   req.IsUnderPremises,
		PopulationDensity: req.PopulationDensity,
		Coordinates:       req.Coordinates,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, z)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	zones, err := h.svc.FindAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, zones)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	z, ok := h.load(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, z)
}

// GeoJSON renders the zone's boundary as a GeoJSON feature.
func (h *Handler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	z, ok := h.load(w, r)
	if !ok {
		return
	}
	feature, err := z.Feature()
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, feature)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	var req updateRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	z, err := h.svc.Update(r.Context(), id, UpdateInput{
		Name:              req.Name,
		Description:       req.Description,
		RiskLevel:         req.RiskLevel,
		IsUnderPremises:   req.IsUnderPremises,
		PopulationDensity: req.PopulationDensity,
		Coordinates:       req.Coordinates,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, z)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	z, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, z)
}

func (h *Handler) CreatePolygon(w http.ResponseWriter, r *http.Request) {
	var req polygonRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.Coordinates == nil {
		httputil.WriteError(w, r, apperr.Invalid("coordinates are required"))
		return
	}

	p, err := h.svc.CreatePolygon(r.Context(), req.Coordinates)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// load resolves the {id} zone, writing the error response itself when it
// can't.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Zone, bool) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return nil, false
	}
	z, err := h.svc.FindOneByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return nil, false
	}
	if z == nil {
		httputil.WriteError(w, r, apperr.NotFound("Zone not found"))
		return nil, false
	}
	return z, true
}

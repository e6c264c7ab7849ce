package incident

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
	"github.com/EmpoweredVote/zone-incidents/internal/httputil"
	"github.com/EmpoweredVote/zone-incidents/internal/models"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// zoneRef accepts the nested {"connect": {"id": ...}} form older clients send.
type zoneRef struct {
	Connect struct {
		ID models.ID `json:"id"`
	} `json:"connect"`
}

type createRequest struct {
	ZoneID                 *models.ID `json:"zone_id"`
	Zone                   *zoneRef   `json:"zone"`
	Description            string     `json:"description"`
	Severity               int        `json:"severity"`
	IsValidatedByAuthority bool       `json:"is_validated_by_authority"`
	Type                   string     `json:"type"`
	ReportTime             *time.Time `json:"report_time"`
}

type updateRequest struct {
	ZoneID                 *models.ID `json:"zone_id"`
	Zone                   *zoneRef   `json:"zone"`
	Description            *string    `json:"description"`
	Severity               *int       `json:"severity"`
	IsValidatedByAuthority *bool      `json:"is_validated_by_authority"`
	Type                   *string    `json:"type"`
	ReportTime             *time.Time `json:"report_time"`
}

func resolveZoneID(flat *models.ID, nested *zoneRef) *models.ID {
	if flat != nil {
		return flat
	}
	if nested != nil {
		return &nested.Connect.ID
	}
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	zoneID := resolveZoneID(req.ZoneID, req.Zone)
	if zoneID == nil || *zoneID == 0 {
		httputil.WriteError(w, r, apperr.Invalid("zone id is required"))
		return
	}
	t, err := ParseType(req.Type)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	inc, err := h.svc.Create(r.Context(), CreateInput{
		ZoneID:                 *zoneID,
		Description:            req.Description,
		Severity:               req.Severity,
		IsValidatedByAuthority: req.IsValidatedByAuthority,
		Type:                   t,
		ReportTime:             req.ReportTime,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, inc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.svc.FindAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, incidents)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	inc, err := h.svc.FindOneByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if inc == nil {
		httputil.WriteError(w, r, apperr.NotFound("Incident not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inc)
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

	in := UpdateInput{
		ZoneID:                 resolveZoneID(req.ZoneID, req.Zone),
		Description:            req.Description,
		Severity:               req.Severity,
		IsValidatedByAuthority: req.IsValidatedByAuthority,
		ReportTime:             req.ReportTime,
	}
	if req.Type != nil {
		t, err := ParseType(*req.Type)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		in.Type = &t
	}

	inc, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	inc, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inc)
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	inc, err := h.svc.ValidateIncident(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inc)
}

func (h *Handler) ByZone(w http.ResponseWriter, r *http.Request) {
	zoneID, err := httputil.URLParamID(r, "zoneId")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.writeList(w, r)(h.svc.FindByZone(r.Context(), zoneID))
}

func (h *Handler) ByType(w http.ResponseWriter, r *http.Request) {
	t, err := ParseType(chi.URLParam(r, "type"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.writeList(w, r)(h.svc.FindByType(r.Context(), t))
}

func (h *Handler) BySeverity(w http.ResponseWriter, r *http.Request) {
	severity, err := strconv.Atoi(chi.URLParam(r, "severity"))
	if err != nil {
		httputil.WriteError(w, r, apperr.Invalid("severity must be an integer"))
		return
	}
	h.writeList(w, r)(h.svc.FindBySeverity(r.Context(), severity))
}

// ByDateRange expects RFC 3339 start and end query parameters.
func (h *Handler) ByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		httputil.WriteError(w, r, apperr.Invalid("start must be an RFC 3339 timestamp"))
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		httputil.WriteError(w, r, apperr.Invalid("end must be an RFC 3339 timestamp"))
		return
	}
	if end.Before(start) {
		httputil.WriteError(w, r, apperr.Invalid("end is before start"))
		return
	}
	h.writeList(w, r)(h.svc.FindByDateRange(r.Context(), start, end))
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request) func([]Incident, error) {
	return func(incidents []Incident, err error) {
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, incidents)
	}
}

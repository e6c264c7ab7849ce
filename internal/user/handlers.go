package user

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

// signupRequest accepts the raw secret as either "password" or the legacy
// "password_hash" key.
type signupRequest struct {
	Name         *string `json:"name"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	Password     string  `json:"password"`
	PasswordHash string  `json:"password_hash"`
	Phone        *string `json:"phone"`
	UserType     string  `json:"user_type"`
}

type updateRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Username     *string `json:"username"`
	Password     *string `json:"password"`
	PasswordHash *string `json:"password_hash"`
	Phone        *string `json:"phone"`
	UserType     *string `json:"user_type"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	password := req.Password
	if password == "" {
		password = req.PasswordHash
	}
	if req.Email == "" || req.Username == "" || password == "" {
		httputil.WriteError(w, r, apperr.Invalid("email, username and password are required"))
		return
	}
	userType, err := ParseUserType(req.UserType)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Create(r.Context(), CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: password,
		Phone:    req.Phone,
		UserType: userType,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.FindAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	u, err := h.svc.FindOneByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if u == nil {
		httputil.WriteError(w, r, apperr.NotFound("User not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
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
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Phone:    req.Phone,
	}
	if in.Password == nil {
		in.Password = req.PasswordHash
	}
	if req.UserType != nil {
		t, err := ParseUserType(*req.UserType)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		in.UserType = &t
	}

	u, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

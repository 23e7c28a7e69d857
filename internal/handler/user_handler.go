package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/service"
)

type UserHandler struct {
	users    *service.UserService
	messages *i18n.MessageSource
}

func NewUserHandler(users *service.UserService, messages *i18n.MessageSource) *UserHandler {
	return &UserHandler{users: users, messages: messages}
}

type createUserRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	PhoneNumber string     `json:"phone_number"`
	Bio         string     `json:"bio"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	var req createUserRequest
	if !decode(w, r, &req, h.messages, locale) {
		return
	}
	if req.Email == "" || req.Password == "" {
		validationError(w, h.messages, locale, "email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		Address:     req.Address,
		City:        req.City,
		DateOfBirth: req.DateOfBirth,
		IsActive:    true,
	}

	respondCreated(w, h.users.Create(r.Context(), locale, user, req.Password, actorFrom(r)))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	criteria := model.Criteria{}
	query := r.URL.Query()
	if role := query.Get("role"); role != "" {
		criteria["role"] = role
	}
	if city := query.Get("city"); city != "" {
		criteria["city"] = city
	}
	switch query.Get("is_active") {
	case "true":
		criteria["is_active"] = true
	case "false":
		criteria["is_active"] = false
	}

	respondOK(w, h.users.FindAll(r.Context(), locale, criteria, findParamsFrom(r)))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	respondOK(w, h.users.FindByID(r.Context(), locale, chi.URLParam(r, "id"), includeDeleted))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	patch := model.Patch{}
	if !decode(w, r, &patch, h.messages, locale) {
		return
	}
	if len(patch) == 0 {
		validationError(w, h.messages, locale, "empty patch")
		return
	}

	respondOK(w, h.users.Update(r.Context(), locale, chi.URLParam(r, "id"), patch, actorFrom(r)))
}

type deleteRequest struct {
	Reason string `json:"reason"`
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	var req deleteRequest
	if !decodeOptional(w, r, &req, h.messages, locale) {
		return
	}

	respondOK(w, h.users.SoftDelete(r.Context(), locale, chi.URLParam(r, "id"), req.Reason, actorFrom(r)))
}

func (h *UserHandler) Archive(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.users.Archive(r.Context(), locale, chi.URLParam(r, "id"), actorFrom(r)))
}

func (h *UserHandler) Restore(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.users.Restore(r.Context(), locale, chi.URLParam(r, "id"), actorFrom(r)))
}

func (h *UserHandler) Deleted(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.users.FindByStatus(r.Context(), locale, model.StatusDeleted, findParamsFrom(r)))
}

func (h *UserHandler) Archived(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.users.FindByStatus(r.Context(), locale, model.StatusArchived, findParamsFrom(r)))
}

func (h *UserHandler) Active(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.users.ActiveUsers(r.Context(), locale, findParamsFrom(r)))
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.users.Profile(r.Context(), locale, chi.URLParam(r, "id")))
}

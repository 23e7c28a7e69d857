package handler

import (
	"net/http"

	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/middleware"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/service"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

type AuthHandler struct {
	auth     *service.AuthService
	messages *i18n.MessageSource
}

func NewAuthHandler(auth *service.AuthService, messages *i18n.MessageSource) *AuthHandler {
	return &AuthHandler{auth: auth, messages: messages}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	var req loginRequest
	if !decode(w, r, &req, h.messages, locale) {
		return
	}
	if req.Email == "" || req.Password == "" {
		validationError(w, h.messages, locale, "email and password are required")
		return
	}

	respondOK(w, h.auth.Login(r.Context(), locale, req.Email, req.Password))
}

// Me returns the authenticated caller's record. Runs behind RequireAuth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondOK(w, model.ErrorResponse(apierror.CodeUnauthorized,
			h.messages.Message("common.error.unauthorized", locale, nil), ""))
		return
	}

	respondOK(w, h.auth.Me(r.Context(), locale, claims.UserID))
}

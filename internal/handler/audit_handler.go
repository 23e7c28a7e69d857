package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/biyonik/project-management-tool/internal/audit"
	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

// AuditHandler exposes the change history of any audited entity.
type AuditHandler struct {
	trail    audit.Reader
	messages *i18n.MessageSource
}

func NewAuditHandler(trail audit.Reader, messages *i18n.MessageSource) *AuditHandler {
	return &AuditHandler{trail: trail, messages: messages}
}

// History returns a handler listing the newest changes for one entity of
// the given type.
func (h *AuditHandler) History(entityType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := localeFrom(r, h.messages)

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		changes, err := h.trail.History(r.Context(), entityType, chi.URLParam(r, "id"), limit)
		if err != nil {
			respondOK(w, model.ErrorResponse(apierror.CodeInternal,
				h.messages.Message("common.error.internal", locale, nil), ""))
			return
		}
		if changes == nil {
			changes = []audit.Change{}
		}

		respondOK(w, model.SuccessResponse(changes, ""))
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
	messages *i18n.MessageSource
}

func NewProjectHandler(projects *service.ProjectService, messages *i18n.MessageSource) *ProjectHandler {
	return &ProjectHandler{projects: projects, messages: messages}
}

type createProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerID     string     `json:"owner_id"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	var req createProjectRequest
	if !decode(w, r, &req, h.messages, locale) {
		return
	}
	if req.Name == "" {
		validationError(w, h.messages, locale, "name is required")
		return
	}

	actor := actorFrom(r)
	if req.OwnerID == "" {
		req.OwnerID = actor.ID
	}
	if req.Status == "" {
		req.Status = "PLANNED"
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	respondCreated(w, h.projects.Create(r.Context(), locale, project, actor))
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	criteria := model.Criteria{}
	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		criteria["status"] = status
	}
	if owner := query.Get("owner_id"); owner != "" {
		criteria["owner_id"] = owner
	}

	respondOK(w, h.projects.FindAll(r.Context(), locale, criteria, findParamsFrom(r)))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	respondOK(w, h.projects.FindByID(r.Context(), locale, chi.URLParam(r, "id"), includeDeleted))
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	patch := model.Patch{}
	if !decode(w, r, &patch, h.messages, locale) {
		return
	}
	if len(patch) == 0 {
		validationError(w, h.messages, locale, "empty patch")
		return
	}

	respondOK(w, h.projects.Update(r.Context(), locale, chi.URLParam(r, "id"), patch, actorFrom(r)))
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	var req deleteRequest
	if !decodeOptional(w, r, &req, h.messages, locale) {
		return
	}

	respondOK(w, h.projects.SoftDelete(r.Context(), locale, chi.URLParam(r, "id"), req.Reason, actorFrom(r)))
}

func (h *ProjectHandler) Archive(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.projects.Archive(r.Context(), locale, chi.URLParam(r, "id"), actorFrom(r)))
}

func (h *ProjectHandler) Restore(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.projects.Restore(r.Context(), locale, chi.URLParam(r, "id"), actorFrom(r)))
}

func (h *ProjectHandler) Deleted(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.projects.FindByStatus(r.Context(), locale, model.StatusDeleted, findParamsFrom(r)))
}

func (h *ProjectHandler) Archived(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.projects.FindByStatus(r.Context(), locale, model.StatusArchived, findParamsFrom(r)))
}

// Tasks returns the project with its live tasks embedded.
func (h *ProjectHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.projects.WithTasks(r.Context(), locale, chi.URLParam(r, "id")))
}

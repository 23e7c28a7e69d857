package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/service"
)

type TaskHandler struct {
	tasks    *service.TaskService
	messages *i18n.MessageSource
}

func NewTaskHandler(tasks *service.TaskService, messages *i18n.MessageSource) *TaskHandler {
	return &TaskHandler{tasks: tasks, messages: messages}
}

type createTaskRequest struct {
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignee_id"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	var req createTaskRequest
	if !decode(w, r, &req, h.messages, locale) {
		return
	}
	if req.Title == "" || req.ProjectID == "" {
		validationError(w, h.messages, locale, "title and project_id are required")
		return
	}
	if req.Status == "" {
		req.Status = "TODO"
	}
	if req.Priority == "" {
		req.Priority = "MEDIUM"
	}

	task := &model.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}

	respondCreated(w, h.tasks.Create(r.Context(), locale, task, actorFrom(r)))
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	criteria := model.Criteria{}
	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		criteria["status"] = status
	}
	if priority := query.Get("priority"); priority != "" {
		criteria["priority"] = priority
	}
	if project := query.Get("project_id"); project != "" {
		criteria["project_id"] = project
	}
	if assignee := query.Get("assignee_id"); assignee != "" {
		criteria["assignee_id"] = assignee
	}

	respondOK(w, h.tasks.FindAll(r.Context(), locale, criteria, findParamsFrom(r)))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	respondOK(w, h.tasks.FindByID(r.Context(), locale, chi.URLParam(r, "id"), includeDeleted))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	patch := model.Patch{}
	if !decode(w, r, &patch, h.messages, locale) {
		return
	}
	if len(patch) == 0 {
		validationError(w, h.messages, locale, "empty patch")
		return
	}

	respondOK(w, h.tasks.Update(r.Context(), locale, chi.URLParam(r, "id"), patch, actorFrom(r)))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)

	var req deleteRequest
	if !decodeOptional(w, r, &req, h.messages, locale) {
		return
	}

	respondOK(w, h.tasks.SoftDelete(r.Context(), locale, chi.URLParam(r, "id"), req.Reason, actorFrom(r)))
}

func (h *TaskHandler) Archive(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.tasks.Archive(r.Context(), locale, chi.URLParam(r, "id"), actorFrom(r)))
}

func (h *TaskHandler) Restore(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.tasks.Restore(r.Context(), locale, chi.URLParam(r, "id"), actorFrom(r)))
}

func (h *TaskHandler) Deleted(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.tasks.FindByStatus(r.Context(), locale, model.StatusDeleted, findParamsFrom(r)))
}

func (h *TaskHandler) Archived(w http.ResponseWriter, r *http.Request) {
	locale := localeFrom(r, h.messages)
	respondOK(w, h.tasks.FindByStatus(r.Context(), locale, model.StatusArchived, findParamsFrom(r)))
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/middleware"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

// respond writes an envelope with the HTTP status implied by its error
// code, or okStatus on success.
func respond(w http.ResponseWriter, resp *model.APIResponse, okStatus int) {
	status := okStatus
	if !resp.Success {
		status = apierror.StatusFor(resp.Error.Code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondOK(w http.ResponseWriter, resp *model.APIResponse) {
	respond(w, resp, http.StatusOK)
}

func respondCreated(w http.ResponseWriter, resp *model.APIResponse) {
	respond(w, resp, http.StatusCreated)
}

// decode reads a JSON body into dst, answering with a validation envelope
// on malformed input. Returns false when the request was already answered.
func decode(w http.ResponseWriter, r *http.Request, dst any, messages *i18n.MessageSource, locale string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondOK(w, model.ErrorResponse(apierror.CodeValidation,
			messages.Message("common.error.validation", locale, nil), "malformed JSON body"))
		return false
	}
	return true
}

// decodeOptional is decode for requests whose body may be absent. An empty
// body leaves dst zero valued; malformed JSON is still rejected. Decoding
// rather than checking Content-Length keeps chunked bodies working.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any, messages *i18n.MessageSource, locale string) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		respondOK(w, model.ErrorResponse(apierror.CodeValidation,
			messages.Message("common.error.validation", locale, nil), "malformed JSON body"))
		return false
	}
	return true
}

func validationError(w http.ResponseWriter, messages *i18n.MessageSource, locale, details string) {
	respondOK(w, model.ErrorResponse(apierror.CodeValidation,
		messages.Message("common.error.validation", locale, nil), details))
}

// localeFrom picks the response locale: the URL segment wins, then the
// first supported Accept-Language entry, then the default.
func localeFrom(r *http.Request, messages *i18n.MessageSource) string {
	if locale := chi.URLParam(r, "locale"); locale != "" && messages.Supported(locale) {
		return locale
	}

	header := r.Header.Get("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		lang, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		lang, _, _ = strings.Cut(lang, "-")
		if lang != "" && messages.Supported(lang) {
			return lang
		}
	}

	return messages.DefaultLocale()
}

// actorFrom identifies who is making the request for the audit trail.
func actorFrom(r *http.Request) model.Actor {
	actor := model.Actor{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if claims, ok := middleware.ClaimsFrom(r.Context()); ok {
		actor.ID = claims.UserID
	}
	return actor
}

// findParamsFrom parses page, limit and sort from the query string. Sort is
// a comma list of field:direction pairs; field names are validated against
// the entity's columns further down the stack.
func findParamsFrom(r *http.Request) model.FindParams {
	query := r.URL.Query()
	params := model.FindParams{}

	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		params.Limit = limit
	}

	if raw := query.Get("sort"); raw != "" {
		for _, pair := range strings.Split(raw, ",") {
			field, direction, _ := strings.Cut(strings.TrimSpace(pair), ":")
			if field == "" {
				continue
			}
			order := model.SortAsc
			if strings.EqualFold(direction, "desc") {
				order = model.SortDesc
			}
			params.Sort = append(params.Sort, model.SortField{Field: field, Order: order})
		}
	}

	return params.Normalized()
}

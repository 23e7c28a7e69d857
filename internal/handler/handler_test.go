package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/model"
)

func requestWithLocale(locale string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	if locale != "" {
		rctx.URLParams.Add("locale", locale)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestLocaleFrom(t *testing.T) {
	t.Parallel()

	messages, err := i18n.NewMessageSource("en")
	require.NoError(t, err)

	t.Run("url segment wins", func(t *testing.T) {
		req := requestWithLocale("tr")
		req.Header.Set("Accept-Language", "en")
		require.Equal(t, "tr", localeFrom(req, messages))
	})

	t.Run("unsupported segment falls through to the header", func(t *testing.T) {
		req := requestWithLocale("fr")
		req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.8")
		require.Equal(t, "tr", localeFrom(req, messages))
	})

	t.Run("no hints means default", func(t *testing.T) {
		require.Equal(t, "en", localeFrom(requestWithLocale(""), messages))
	})
}

func TestFindParamsFrom(t *testing.T) {
	t.Parallel()

	t.Run("parses paging and sort", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=50&sort=email:desc,created_at:asc", nil)
		params := findParamsFrom(req)

		require.Equal(t, 2, params.Page)
		require.Equal(t, 50, params.Limit)
		require.Equal(t, []model.SortField{
			{Field: "email", Order: model.SortDesc},
			{Field: "created_at", Order: model.SortAsc},
		}, params.Sort)
	})

	t.Run("defaults apply when absent or invalid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?page=abc&limit=-5", nil)
		params := findParamsFrom(req)

		require.Equal(t, 1, params.Page)
		require.Equal(t, 10, params.Limit)
		require.Empty(t, params.Sort)
	})

	t.Run("limit is capped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?limit=100000", nil)
		require.Equal(t, 200, findParamsFrom(req).Limit)
	})
}

func TestDecodeOptional(t *testing.T) {
	t.Parallel()

	messages, err := i18n.NewMessageSource("en")
	require.NoError(t, err)

	t.Run("reads a chunked body with unknown length", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(`{"reason":"cleanup"}`))
		req.ContentLength = -1

		var body struct {
			Reason string `json:"reason"`
		}
		require.True(t, decodeOptional(httptest.NewRecorder(), req, &body, messages, "en"))
		require.Equal(t, "cleanup", body.Reason)
	})

	t.Run("empty body leaves the destination zero valued", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)

		var body struct {
			Reason string `json:"reason"`
		}
		require.True(t, decodeOptional(httptest.NewRecorder(), req, &body, messages, "en"))
		require.Empty(t, body.Reason)
	})

	t.Run("malformed body is still rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(`{"reason":`))
		w := httptest.NewRecorder()

		var body struct {
			Reason string `json:"reason"`
		}
		require.False(t, decodeOptional(w, req, &body, messages, "en"))
		require.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})
}

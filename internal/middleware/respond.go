package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

// writeError emits an error envelope from inside middleware, where no
// locale or message catalog is available yet.
func writeError(w http.ResponseWriter, code, message string) {
	apiErr := apierror.New(code, message, "", apierror.StatusFor(code))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse(apiErr.Code, apiErr.Message, apiErr.Details))
}

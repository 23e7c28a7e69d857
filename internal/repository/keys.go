package repository

import (
	"encoding/json"

	"github.com/biyonik/project-management-tool/internal/model"
)

// listShape captures everything that changes a list result. Serialized with
// encoding/json, which sorts map keys, so equivalent queries always produce
// the same cache key.
type listShape struct {
	Kind     string              `json:"kind"`
	Criteria model.Criteria      `json:"criteria,omitempty"`
	Status   model.ArchiveStatus `json:"status,omitempty"`
	Page     int                 `json:"page"`
	Limit    int                 `json:"limit"`
	Sort     []model.SortField   `json:"sort,omitempty"`
}

func entityKey(name, id string) string {
	return name + ":" + id
}

func listKey(name string, shape listShape) string {
	encoded, err := json.Marshal(shape)
	if err != nil {
		return ""
	}
	return name + ":list:" + string(encoded)
}

func listPattern(name string) string {
	return name + ":list:*"
}

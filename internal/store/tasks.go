package store

import (
	"github.com/biyonik/project-management-tool/internal/model"
)

// TaskDefinition binds model.Task to the tasks table.
func TaskDefinition() Definition[model.Task] {
	return Definition[model.Task]{
		Table: "tasks",
		Name:  "task",
		Columns: []string{
			"project_id", "title", "description", "assignee_id", "status", "priority", "due_date",
		},
		Fields: func(t *model.Task) []any {
			return []any{
				&t.ProjectID, &t.Title, &t.Description, &t.AssigneeID, &t.Status, &t.Priority, &t.DueDate,
			}
		},
		ID:      func(t *model.Task) *string { return &t.ID },
		Audit:   func(t *model.Task) *model.AuditFields { return &t.AuditFields },
		Archive: func(t *model.Task) *model.ArchiveFields { return &t.ArchiveFields },
		Patchable: map[string]struct{}{
			"title":       {},
			"description": {},
			"assignee_id": {},
			"status":      {},
			"priority":    {},
			"due_date":    {},
		},
	}
}

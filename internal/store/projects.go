package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biyonik/project-management-tool/internal/model"
)

// ProjectDefinition binds model.Project to the projects table.
func ProjectDefinition() Definition[model.Project] {
	return Definition[model.Project]{
		Table: "projects",
		Name:  "project",
		Columns: []string{
			"name", "description", "owner_id", "status", "start_date", "end_date",
		},
		Fields: func(p *model.Project) []any {
			return []any{
				&p.Name, &p.Description, &p.OwnerID, &p.Status, &p.StartDate, &p.EndDate,
			}
		},
		ID:      func(p *model.Project) *string { return &p.ID },
		Audit:   func(p *model.Project) *model.AuditFields { return &p.AuditFields },
		Archive: func(p *model.Project) *model.ArchiveFields { return &p.ArchiveFields },
		Patchable: map[string]struct{}{
			"name":        {},
			"description": {},
			"owner_id":    {},
			"status":      {},
			"start_date":  {},
			"end_date":    {},
		},
		Relations: map[string]RelationLoader[model.Project]{
			"tasks": loadProjectTasks,
		},
	}
}

func loadProjectTasks(ctx context.Context, pool *pgxpool.Pool, project *model.Project) error {
	rows, err := pool.Query(ctx, `
		SELECT id, project_id, title, description, assignee_id, status, priority, due_date,
		       created_at, created_by, updated_at, updated_by,
		       deleted_at, deleted_by, deletion_reason,
		       archive_status, archive_date, archived_by
		FROM tasks
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`, project.ID)
	if err != nil {
		return fmt.Errorf("query project tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssigneeID, &t.Status, &t.Priority, &t.DueDate,
			&t.CreatedAt, &t.CreatedBy, &t.UpdatedAt, &t.UpdatedBy,
			&t.DeletedAt, &t.DeletedBy, &t.DeletionReason,
			&t.ArchiveStatus, &t.ArchiveDate, &t.ArchivedBy,
		); err != nil {
			return fmt.Errorf("scan project task: %w", err)
		}
		tasks = append(tasks, t)
	}

	project.Tasks = tasks
	return rows.Err()
}

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biyonik/project-management-tool/internal/model"
)

// UserDefinition binds model.User to the users table. The projects relation
// loads the user's live projects ordered by creation time.
func UserDefinition() Definition[model.User] {
	return Definition[model.User]{
		Table: "users",
		Name:  "user",
		Columns: []string{
			"email", "password_hash", "full_name", "role",
			"phone_number", "bio", "address", "city", "date_of_birth",
			"is_active", "is_verified",
		},
		Fields: func(u *model.User) []any {
			return []any{
				&u.Email, &u.PasswordHash, &u.FullName, &u.Role,
				&u.PhoneNumber, &u.Bio, &u.Address, &u.City, &u.DateOfBirth,
				&u.IsActive, &u.IsVerified,
			}
		},
		ID:      func(u *model.User) *string { return &u.ID },
		Audit:   func(u *model.User) *model.AuditFields { return &u.AuditFields },
		Archive: func(u *model.User) *model.ArchiveFields { return &u.ArchiveFields },
		Patchable: map[string]struct{}{
			"email":         {},
			"password_hash": {},
			"full_name":     {},
			"role":          {},
			"phone_number":  {},
			"bio":           {},
			"address":       {},
			"city":          {},
			"date_of_birth": {},
			"is_active":     {},
			"is_verified":   {},
		},
		Protected: map[string]struct{}{
			"password_hash": {},
		},
		Relations: map[string]RelationLoader[model.User]{
			"projects": loadUserProjects,
		},
	}
}

func loadUserProjects(ctx context.Context, pool *pgxpool.Pool, user *model.User) error {
	rows, err := pool.Query(ctx, `
		SELECT id, name, description, owner_id, status, start_date, end_date,
		       created_at, created_by, updated_at, updated_by,
		       deleted_at, deleted_by, deletion_reason,
		       archive_status, archive_date, archived_by
		FROM projects
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`, user.ID)
	if err != nil {
		return fmt.Errorf("query user projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.Status, &p.StartDate, &p.EndDate,
			&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy,
			&p.DeletedAt, &p.DeletedBy, &p.DeletionReason,
			&p.ArchiveStatus, &p.ArchiveDate, &p.ArchivedBy,
		); err != nil {
			return fmt.Errorf("scan user project: %w", err)
		}
		projects = append(projects, p)
	}

	user.Projects = projects
	return rows.Err()
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biyonik/project-management-tool/internal/model"
)

// commonColumns are present on every archivable table, in the order they
// appear after the entity-specific columns in every select list.
var commonColumns = []string{
	"created_at", "created_by", "updated_at", "updated_by",
	"deleted_at", "deleted_by", "deletion_reason",
	"archive_status", "archive_date", "archived_by",
}

// RelationLoader populates a named relation on an already loaded entity.
type RelationLoader[T any] func(ctx context.Context, pool *pgxpool.Pool, entity *T) error

// Definition binds a Go entity type to its table. Fields must return
// pointers to the entity-specific fields in the same order as Columns;
// the store handles the id and the shared audit and archive columns.
type Definition[T any] struct {
	Table     string
	Name      string
	Columns   []string
	Fields    func(*T) []any
	ID        func(*T) *string
	Audit     func(*T) *model.AuditFields
	Archive   func(*T) *model.ArchiveFields
	Patchable map[string]struct{}
	// Protected columns are never accepted in caller supplied sorting,
	// criteria or lookups.
	Protected map[string]struct{}
	Relations map[string]RelationLoader[T]
}

// Store implements the archivable persistence operations for one entity
// type. All read operations exclude soft deleted rows unless includeDeleted
// is set; mutations that target live rows report ErrNotFound for rows that
// are missing or already deleted.
type Store[T any] struct {
	pool       *pgxpool.Pool
	def        Definition[T]
	selectList string
	sortable   map[string]struct{}
}

func New[T any](pool *pgxpool.Pool, def Definition[T]) *Store[T] {
	columns := make([]string, 0, len(def.Columns)+len(commonColumns)+1)
	columns = append(columns, "id")
	columns = append(columns, def.Columns...)
	columns = append(columns, commonColumns...)

	sortable := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		if _, hidden := def.Protected[column]; hidden {
			continue
		}
		sortable[column] = struct{}{}
	}

	return &Store[T]{
		pool:       pool,
		def:        def,
		selectList: strings.Join(columns, ", "),
		sortable:   sortable,
	}
}

func (s *Store[T]) Name() string {
	return s.def.Name
}

// scanTargets returns scan destinations matching the select list order.
func (s *Store[T]) scanTargets(entity *T) []any {
	audit := s.def.Audit(entity)
	archive := s.def.Archive(entity)

	targets := make([]any, 0, len(s.def.Columns)+len(commonColumns)+1)
	targets = append(targets, s.def.ID(entity))
	targets = append(targets, s.def.Fields(entity)...)
	targets = append(targets,
		&audit.CreatedAt, &audit.CreatedBy, &audit.UpdatedAt, &audit.UpdatedBy,
		&archive.DeletedAt, &archive.DeletedBy, &archive.DeletionReason,
		&archive.ArchiveStatus, &archive.ArchiveDate, &archive.ArchivedBy,
	)
	return targets
}

func (s *Store[T]) scanRow(row pgx.Row) (*T, error) {
	entity := new(T)
	if err := row.Scan(s.scanTargets(entity)...); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Store[T]) notFound(id string) error {
	return fmt.Errorf("%s %s: %w", s.def.Name, id, model.ErrNotFound)
}

func (s *Store[T]) FindByID(ctx context.Context, id string, includeDeleted bool) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", s.selectList, s.def.Table)
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	entity, err := s.scanRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.notFound(id)
		}
		return nil, fmt.Errorf("find %s by id: %w", s.def.Name, err)
	}
	return entity, nil
}

// FindOneBy fetches a single live row matching an exact column value.
func (s *Store[T]) FindOneBy(ctx context.Context, column string, value any) (*T, error) {
	if _, ok := s.sortable[column]; !ok {
		return nil, fmt.Errorf("column %q: %w", column, model.ErrInvalidField)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 AND deleted_at IS NULL", s.selectList, s.def.Table, column)

	entity, err := s.scanRow(s.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s by %s: %w", s.def.Name, column, model.ErrNotFound)
		}
		return nil, fmt.Errorf("find %s by %s: %w", s.def.Name, column, err)
	}
	return entity, nil
}

// FindByCriteria returns a page of live rows matching all criteria as exact
// column equalities, plus the total match count for pagination metadata.
func (s *Store[T]) FindByCriteria(ctx context.Context, criteria model.Criteria, params model.FindParams) ([]*T, int, error) {
	params = params.Normalized()

	where := []string{"deleted_at IS NULL"}
	args := make([]any, 0, len(criteria)+2)
	for column, value := range criteria {
		if _, ok := s.sortable[column]; !ok {
			return nil, 0, fmt.Errorf("criteria column %q: %w", column, model.ErrInvalidField)
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	condition := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", s.def.Table, condition)
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", s.def.Name, err)
	}

	orderBy, err := s.orderClause(params.Sort)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset())
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		s.selectList, s.def.Table, condition, orderBy, len(args)-1, len(args))

	return s.queryPage(ctx, query, args, total)
}

// FindByStatus pages through rows in a given archive status, including soft
// deleted ones when the status asks for them.
func (s *Store[T]) FindByStatus(ctx context.Context, status model.ArchiveStatus, params model.FindParams) ([]*T, int, error) {
	if !status.Valid() {
		return nil, 0, fmt.Errorf("status %q: %w", status, model.ErrInvalidStatus)
	}
	params = params.Normalized()

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE archive_status = $1", s.def.Table)
	if err := s.pool.QueryRow(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s by status: %w", s.def.Name, err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE archive_status = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3",
		s.selectList, s.def.Table)

	return s.queryPage(ctx, query, []any{status, params.Limit, params.Offset()}, total)
}

func (s *Store[T]) queryPage(ctx context.Context, query string, args []any, total int) ([]*T, int, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", s.def.Name, err)
	}
	defer rows.Close()

	var entities []*T
	for rows.Next() {
		entity := new(T)
		if err := rows.Scan(s.scanTargets(entity)...); err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", s.def.Name, err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s: %w", s.def.Name, err)
	}

	return entities, total, nil
}

func (s *Store[T]) orderClause(sort []model.SortField) (string, error) {
	if len(sort) == 0 {
		return "created_at DESC", nil
	}

	clauses := make([]string, 0, len(sort))
	for _, field := range sort {
		if _, ok := s.sortable[field.Field]; !ok {
			return "", fmt.Errorf("sort field %q: %w", field.Field, model.ErrInvalidField)
		}
		order := "ASC"
		if field.Order == model.SortDesc {
			order = "DESC"
		}
		clauses = append(clauses, field.Field+" "+order)
	}
	return strings.Join(clauses, ", "), nil
}

// Create inserts a new row in ACTIVE status. A missing id is generated.
func (s *Store[T]) Create(ctx context.Context, entity *T, actorID string) (*T, error) {
	id := s.def.ID(entity)
	if *id == "" {
		*id = uuid.New().String()
	}

	now := time.Now().UTC()
	audit := s.def.Audit(entity)
	audit.CreatedAt = now
	audit.CreatedBy = actorID
	audit.UpdatedAt = now
	audit.UpdatedBy = actorID

	archive := s.def.Archive(entity)
	archive.ArchiveStatus = model.StatusActive

	columns := make([]string, 0, len(s.def.Columns)+len(commonColumns)+1)
	columns = append(columns, "id")
	columns = append(columns, s.def.Columns...)
	columns = append(columns, commonColumns...)

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.def.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := s.pool.Exec(ctx, query, s.scanTargets(entity)...); err != nil {
		return nil, fmt.Errorf("insert %s: %w", s.def.Name, err)
	}

	return entity, nil
}

// Update applies a partial update to a live row and returns the new state.
// Patch keys are validated against the entity's updatable columns.
func (s *Store[T]) Update(ctx context.Context, id string, patch model.Patch, actorID string) (*T, error) {
	if len(patch) == 0 {
		return s.FindByID(ctx, id, false)
	}

	sets := make([]string, 0, len(patch)+2)
	args := make([]any, 0, len(patch)+3)
	for column, value := range patch {
		if _, ok := s.def.Patchable[column]; !ok {
			return nil, fmt.Errorf("patch column %q: %w", column, model.ErrInvalidField)
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, actorID)
	sets = append(sets, fmt.Sprintf("updated_by = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s",
		s.def.Table, strings.Join(sets, ", "), len(args), s.selectList)

	entity, err := s.scanRow(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.notFound(id)
		}
		return nil, fmt.Errorf("update %s: %w", s.def.Name, err)
	}
	return entity, nil
}

// Delete removes a row permanently, regardless of its archive status.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.def.Table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.def.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return s.notFound(id)
	}
	return nil
}

// SoftDelete marks a live row as deleted. Rows already soft deleted are
// reported as not found rather than re-deleted.
func (s *Store[T]) SoftDelete(ctx context.Context, id, actorID, reason string) (*T, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1, deleted_by = $2, deletion_reason = $3, archive_status = $4,
		    updated_at = $1, updated_by = $2
		WHERE id = $5 AND deleted_at IS NULL
		RETURNING %s`, s.def.Table, s.selectList)

	entity, err := s.scanRow(s.pool.QueryRow(ctx, query, time.Now().UTC(), actorID, reason, model.StatusDeleted, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.notFound(id)
		}
		return nil, fmt.Errorf("soft delete %s: %w", s.def.Name, err)
	}
	return entity, nil
}

// Archive stamps a live row as archived. Archiving an already archived row
// refreshes the archive timestamp and actor.
func (s *Store[T]) Archive(ctx context.Context, id, actorID string) (*T, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET archive_status = $1, archive_date = $2, archived_by = $3,
		    updated_at = $2, updated_by = $3
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING %s`, s.def.Table, s.selectList)

	entity, err := s.scanRow(s.pool.QueryRow(ctx, query, model.StatusArchived, time.Now().UTC(), actorID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.notFound(id)
		}
		return nil, fmt.Errorf("archive %s: %w", s.def.Name, err)
	}
	return entity, nil
}

// Restore clears both deletion and archive marks in one statement, bringing
// the row back to ACTIVE no matter which state it was in.
func (s *Store[T]) Restore(ctx context.Context, id, actorID string) (*T, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NULL, deleted_by = '', deletion_reason = '',
		    archive_status = $1, archive_date = NULL, archived_by = '',
		    updated_at = $2, updated_by = $3
		WHERE id = $4
		RETURNING %s`, s.def.Table, s.selectList)

	entity, err := s.scanRow(s.pool.QueryRow(ctx, query, model.StatusActive, time.Now().UTC(), actorID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.notFound(id)
		}
		return nil, fmt.Errorf("restore %s: %w", s.def.Name, err)
	}
	return entity, nil
}

// Exists reports whether a live row has the given column value, optionally
// excluding one id. Used for uniqueness checks before writes.
func (s *Store[T]) Exists(ctx context.Context, column string, value any, excludeID string) (bool, error) {
	if _, ok := s.sortable[column]; !ok {
		return false, fmt.Errorf("column %q: %w", column, model.ErrInvalidField)
	}

	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND deleted_at IS NULL", s.def.Table, column)
	args := []any{value}
	if excludeID != "" {
		args = append(args, excludeID)
		query += " AND id != $2"
	}
	query += ")"

	var exists bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s exists: %w", s.def.Name, err)
	}
	return exists, nil
}

// LoadRelations populates the named relations on an entity.
func (s *Store[T]) LoadRelations(ctx context.Context, entity *T, names []string) error {
	for _, name := range names {
		loader, ok := s.def.Relations[name]
		if !ok {
			return fmt.Errorf("relation %q on %s: %w", name, s.def.Name, model.ErrRelationUnknown)
		}
		if err := loader(ctx, s.pool, entity); err != nil {
			return fmt.Errorf("load %s relation %s: %w", s.def.Name, name, err)
		}
	}
	return nil
}

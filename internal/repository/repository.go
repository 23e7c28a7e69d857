package repository

import (
	"context"

	"github.com/biyonik/project-management-tool/internal/model"
)

// EntityStore is the persistence surface for one archivable entity type.
// *store.Store[T] is the Postgres implementation; Cached decorates any
// implementation with caching.
type EntityStore[T any] interface {
	Name() string
	FindByID(ctx context.Context, id string, includeDeleted bool) (*T, error)
	FindOneBy(ctx context.Context, column string, value any) (*T, error)
	FindByCriteria(ctx context.Context, criteria model.Criteria, params model.FindParams) ([]*T, int, error)
	FindByStatus(ctx context.Context, status model.ArchiveStatus, params model.FindParams) ([]*T, int, error)
	Create(ctx context.Context, entity *T, actorID string) (*T, error)
	Update(ctx context.Context, id string, patch model.Patch, actorID string) (*T, error)
	Delete(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id, actorID, reason string) (*T, error)
	Archive(ctx context.Context, id, actorID string) (*T, error)
	Restore(ctx context.Context, id, actorID string) (*T, error)
	Exists(ctx context.Context, column string, value any, excludeID string) (bool, error)
	LoadRelations(ctx context.Context, entity *T, names []string) error
}

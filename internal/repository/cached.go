package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/biyonik/project-management-tool/internal/cache"
	"github.com/biyonik/project-management-tool/internal/model"
)

const defaultListTTL = 5 * time.Minute

// cachedList is the serialized form of one list page.
type cachedList[T any] struct {
	Items []*T `json:"items"`
	Total int  `json:"total"`
}

// Cached decorates an EntityStore with read-through caching. Single
// entities are cached without expiry and kept current by write-through on
// every mutation; list pages expire after listTTL and the whole list
// namespace is cleared whenever any row of the entity type changes. Cache
// failures are logged and the call falls through to the store.
type Cached[T any] struct {
	store   EntityStore[T]
	cache   cache.Cache
	log     *slog.Logger
	id      func(*T) string
	listTTL time.Duration
}

func NewCached[T any](store EntityStore[T], c cache.Cache, log *slog.Logger, id func(*T) string, listTTL time.Duration) *Cached[T] {
	if listTTL <= 0 {
		listTTL = defaultListTTL
	}
	return &Cached[T]{store: store, cache: c, log: log, id: id, listTTL: listTTL}
}

func (r *Cached[T]) Name() string {
	return r.store.Name()
}

func (r *Cached[T]) FindByID(ctx context.Context, id string, includeDeleted bool) (*T, error) {
	// The cached copy is the live view, so deleted reads go to the store.
	if includeDeleted {
		return r.store.FindByID(ctx, id, true)
	}

	key := entityKey(r.store.Name(), id)
	if entity, ok := r.getEntity(ctx, key); ok {
		return entity, nil
	}

	entity, err := r.store.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	r.setEntity(ctx, key, entity, 0)
	return entity, nil
}

func (r *Cached[T]) FindOneBy(ctx context.Context, column string, value any) (*T, error) {
	return r.store.FindOneBy(ctx, column, value)
}

func (r *Cached[T]) FindByCriteria(ctx context.Context, criteria model.Criteria, params model.FindParams) ([]*T, int, error) {
	params = params.Normalized()
	key := listKey(r.store.Name(), listShape{
		Kind:     "criteria",
		Criteria: criteria,
		Page:     params.Page,
		Limit:    params.Limit,
		Sort:     params.Sort,
	})

	if items, total, ok := r.getList(ctx, key); ok {
		return items, total, nil
	}

	items, total, err := r.store.FindByCriteria(ctx, criteria, params)
	if err != nil {
		return nil, 0, err
	}

	r.setList(ctx, key, items, total)
	return items, total, nil
}

func (r *Cached[T]) FindByStatus(ctx context.Context, status model.ArchiveStatus, params model.FindParams) ([]*T, int, error) {
	params = params.Normalized()
	key := listKey(r.store.Name(), listShape{
		Kind:   "status",
		Status: status,
		Page:   params.Page,
		Limit:  params.Limit,
	})

	if items, total, ok := r.getList(ctx, key); ok {
		return items, total, nil
	}

	items, total, err := r.store.FindByStatus(ctx, status, params)
	if err != nil {
		return nil, 0, err
	}

	r.setList(ctx, key, items, total)
	return items, total, nil
}

func (r *Cached[T]) Create(ctx context.Context, entity *T, actorID string) (*T, error) {
	created, err := r.store.Create(ctx, entity, actorID)
	if err != nil {
		return nil, err
	}

	r.afterWrite(ctx, created)
	return created, nil
}

func (r *Cached[T]) Update(ctx context.Context, id string, patch model.Patch, actorID string) (*T, error) {
	updated, err := r.store.Update(ctx, id, patch, actorID)
	if err != nil {
		return nil, err
	}

	r.afterWrite(ctx, updated)
	return updated, nil
}

func (r *Cached[T]) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	r.evict(ctx, id)
	return nil
}

func (r *Cached[T]) SoftDelete(ctx context.Context, id, actorID, reason string) (*T, error) {
	deleted, err := r.store.SoftDelete(ctx, id, actorID, reason)
	if err != nil {
		return nil, err
	}

	// Soft deleted rows must stop serving live reads, so evict instead of
	// writing the new state through.
	r.evict(ctx, id)
	return deleted, nil
}

func (r *Cached[T]) Archive(ctx context.Context, id, actorID string) (*T, error) {
	archived, err := r.store.Archive(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	r.afterWrite(ctx, archived)
	return archived, nil
}

func (r *Cached[T]) Restore(ctx context.Context, id, actorID string) (*T, error) {
	restored, err := r.store.Restore(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	r.afterWrite(ctx, restored)
	return restored, nil
}

func (r *Cached[T]) Exists(ctx context.Context, column string, value any, excludeID string) (bool, error) {
	return r.store.Exists(ctx, column, value, excludeID)
}

func (r *Cached[T]) LoadRelations(ctx context.Context, entity *T, names []string) error {
	return r.store.LoadRelations(ctx, entity, names)
}

func (r *Cached[T]) getEntity(ctx context.Context, key string) (*T, bool) {
	data, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	entity := new(T)
	if err := json.Unmarshal(data, entity); err != nil {
		r.log.Warn("cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return entity, true
}

func (r *Cached[T]) setEntity(ctx context.Context, key string, entity *T, ttl time.Duration) {
	data, err := json.Marshal(entity)
	if err != nil {
		r.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.cache.Set(ctx, key, data, ttl); err != nil {
		r.log.Warn("cache write failed", "key", key, "error", err)
	}
}

func (r *Cached[T]) getList(ctx context.Context, key string) ([]*T, int, bool) {
	data, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warn("cache read failed", "key", key, "error", err)
		return nil, 0, false
	}
	if !found {
		return nil, 0, false
	}

	var list cachedList[T]
	if err := json.Unmarshal(data, &list); err != nil {
		r.log.Warn("cache entry corrupt", "key", key, "error", err)
		return nil, 0, false
	}
	return list.Items, list.Total, true
}

func (r *Cached[T]) setList(ctx context.Context, key string, items []*T, total int) {
	data, err := json.Marshal(cachedList[T]{Items: items, Total: total})
	if err != nil {
		r.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.cache.Set(ctx, key, data, r.listTTL); err != nil {
		r.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// afterWrite refreshes the entity key with the post-write state and clears
// every cached list page for the entity type.
func (r *Cached[T]) afterWrite(ctx context.Context, entity *T) {
	r.setEntity(ctx, entityKey(r.store.Name(), r.id(entity)), entity, 0)
	r.clearLists(ctx)
}

func (r *Cached[T]) evict(ctx context.Context, id string) {
	key := entityKey(r.store.Name(), id)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.Warn("cache delete failed", "key", key, "error", err)
	}
	r.clearLists(ctx)
}

func (r *Cached[T]) clearLists(ctx context.Context) {
	if err := r.cache.ClearPattern(ctx, listPattern(r.store.Name())); err != nil {
		r.log.Warn("cache list clear failed", "entity", r.store.Name(), "error", err)
	}
}

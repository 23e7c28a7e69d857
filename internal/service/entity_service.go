package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/biyonik/project-management-tool/internal/audit"
	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/repository"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

// Entity implements the shared lifecycle operations for one archivable
// entity type: lookup, paging, create, partial update, soft delete, archive
// and restore. Every mutation records an audit change; audit failures are
// logged and never fail the request. Responses are full envelopes with
// messages resolved in the caller's locale.
type Entity[T any] struct {
	repo     repository.EntityStore[T]
	auditor  audit.Logger
	messages *i18n.MessageSource
	log      *slog.Logger
	id       func(*T) string
	devMode  bool
}

func NewEntity[T any](
	repo repository.EntityStore[T],
	auditor audit.Logger,
	messages *i18n.MessageSource,
	log *slog.Logger,
	id func(*T) string,
	devMode bool,
) *Entity[T] {
	return &Entity[T]{
		repo:     repo,
		auditor:  auditor,
		messages: messages,
		log:      log,
		id:       id,
		devMode:  devMode,
	}
}

func (s *Entity[T]) Name() string {
	return s.repo.Name()
}

func (s *Entity[T]) FindByID(ctx context.Context, locale, id string, includeDeleted bool) *model.APIResponse {
	entity, err := s.repo.FindByID(ctx, id, includeDeleted)
	if err != nil {
		return s.fail(locale, err, id)
	}
	return model.SuccessResponse(entity, "")
}

func (s *Entity[T]) FindAll(ctx context.Context, locale string, criteria model.Criteria, params model.FindParams) *model.APIResponse {
	params = params.Normalized()
	items, total, err := s.repo.FindByCriteria(ctx, criteria, params)
	if err != nil {
		return s.fail(locale, err, "")
	}
	if items == nil {
		items = []*T{}
	}
	return model.PaginatedResponse(items, model.NewMeta(params.Page, params.Limit, total, params.Sort), "")
}

func (s *Entity[T]) FindByStatus(ctx context.Context, locale string, status model.ArchiveStatus, params model.FindParams) *model.APIResponse {
	params = params.Normalized()
	items, total, err := s.repo.FindByStatus(ctx, status, params)
	if err != nil {
		return s.fail(locale, err, "")
	}
	if items == nil {
		items = []*T{}
	}
	return model.PaginatedResponse(items, model.NewMeta(params.Page, params.Limit, total, nil), "")
}

// WithRelations returns the entity with the named relations populated.
func (s *Entity[T]) WithRelations(ctx context.Context, locale, id string, names []string) *model.APIResponse {
	entity, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return s.fail(locale, err, id)
	}
	if err := s.repo.LoadRelations(ctx, entity, names); err != nil {
		return s.fail(locale, err, id)
	}
	return model.SuccessResponse(entity, "")
}

func (s *Entity[T]) Create(ctx context.Context, locale string, entity *T, actor model.Actor) *model.APIResponse {
	created, err := s.repo.Create(ctx, entity, actor.ID)
	if err != nil {
		return s.fail(locale, err, "")
	}

	s.record(ctx, audit.ActionCreate, s.id(created), nil, created, actor)
	return model.SuccessResponse(created, s.msg(locale, ".created", nil))
}

func (s *Entity[T]) Update(ctx context.Context, locale, id string, patch model.Patch, actor model.Actor) *model.APIResponse {
	old, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return s.fail(locale, err, id)
	}

	updated, err := s.repo.Update(ctx, id, patch, actor.ID)
	if err != nil {
		return s.fail(locale, err, id)
	}

	s.record(ctx, audit.ActionUpdate, id, old, updated, actor)
	return model.SuccessResponse(updated, s.msg(locale, ".updated", nil))
}

func (s *Entity[T]) SoftDelete(ctx context.Context, locale, id, reason string, actor model.Actor) *model.APIResponse {
	old, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return s.fail(locale, err, id)
	}

	if _, err := s.repo.SoftDelete(ctx, id, actor.ID, reason); err != nil {
		return s.fail(locale, err, id)
	}

	s.record(ctx, audit.ActionSoftDelete, id, old, nil, actor)
	return model.SuccessResponse(nil, s.msg(locale, ".deleted", nil))
}

func (s *Entity[T]) Archive(ctx context.Context, locale, id string, actor model.Actor) *model.APIResponse {
	old, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return s.fail(locale, err, id)
	}

	archived, err := s.repo.Archive(ctx, id, actor.ID)
	if err != nil {
		return s.fail(locale, err, id)
	}

	s.record(ctx, audit.ActionArchive, id, old, archived, actor)
	return model.SuccessResponse(archived, s.msg(locale, ".archived", nil))
}

func (s *Entity[T]) Restore(ctx context.Context, locale, id string, actor model.Actor) *model.APIResponse {
	old, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return s.fail(locale, err, id)
	}

	restored, err := s.repo.Restore(ctx, id, actor.ID)
	if err != nil {
		return s.fail(locale, err, id)
	}

	s.record(ctx, audit.ActionRestore, id, old, restored, actor)
	return model.SuccessResponse(restored, s.msg(locale, ".restored", nil))
}

// msg resolves a message for this entity type, e.g. "user" + ".created".
func (s *Entity[T]) msg(locale, suffix string, args map[string]string) string {
	return s.messages.Message(s.repo.Name()+suffix, locale, args)
}

// record sends a change to the audit trail. The mutation already happened,
// so a failing audit write is logged instead of failing the response.
func (s *Entity[T]) record(ctx context.Context, action, id string, old, updated any, actor model.Actor) {
	err := s.auditor.LogChange(ctx, audit.Change{
		EntityType: s.repo.Name(),
		EntityID:   id,
		Action:     action,
		OldValues:  old,
		NewValues:  updated,
		ActorID:    actor.ID,
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	})
	if err != nil {
		s.log.Warn("audit record failed", "entity", s.repo.Name(), "id", id, "action", action, "error", err)
	}
}

// fail translates a repository error into an error envelope. Internal
// details are only exposed in development mode.
func (s *Entity[T]) fail(locale string, err error, id string) *model.APIResponse {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.ErrorResponse(apierror.CodeNotFound,
			s.msg(locale, ".not.found", map[string]string{"id": id}), "")
	case errors.Is(err, model.ErrInvalidField), errors.Is(err, model.ErrInvalidStatus), errors.Is(err, model.ErrRelationUnknown):
		details := ""
		if s.devMode {
			details = err.Error()
		}
		return model.ErrorResponse(apierror.CodeValidation,
			s.messages.Message("common.error.validation", locale, nil), details)
	default:
		s.log.Error("request failed", "entity", s.repo.Name(), "error", err)
		details := ""
		if s.devMode {
			details = err.Error()
		}
		return model.ErrorResponse(apierror.CodeInternal,
			s.messages.Message("common.error.internal", locale, nil), details)
	}
}

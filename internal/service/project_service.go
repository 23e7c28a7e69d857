package service

import (
	"context"

	"github.com/biyonik/project-management-tool/internal/event"
	"github.com/biyonik/project-management-tool/internal/model"
)

// ProjectService layers project lifecycle events on the shared operations.
type ProjectService struct {
	*Entity[model.Project]
	bus *event.Bus
}

func NewProjectService(base *Entity[model.Project], bus *event.Bus) *ProjectService {
	return &ProjectService{Entity: base, bus: bus}
}

func (s *ProjectService) Create(ctx context.Context, locale string, project *model.Project, actor model.Actor) *model.APIResponse {
	resp := s.Entity.Create(ctx, locale, project, actor)
	if resp.Success {
		s.bus.Publish(event.New(event.ProjectCreated, resp.Data, actor.ID))
	}
	return resp
}

func (s *ProjectService) Archive(ctx context.Context, locale, id string, actor model.Actor) *model.APIResponse {
	resp := s.Entity.Archive(ctx, locale, id, actor)
	if resp.Success {
		s.bus.Publish(event.New(event.ProjectArchived, resp.Data, actor.ID))
	}
	return resp
}

// WithTasks returns the project with its live tasks loaded.
func (s *ProjectService) WithTasks(ctx context.Context, locale, id string) *model.APIResponse {
	return s.WithRelations(ctx, locale, id, []string{"tasks"})
}

// ByOwner lists live projects owned by a user.
func (s *ProjectService) ByOwner(ctx context.Context, locale, ownerID string, params model.FindParams) *model.APIResponse {
	return s.FindAll(ctx, locale, model.Criteria{"owner_id": ownerID}, params)
}

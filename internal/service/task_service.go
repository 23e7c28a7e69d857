package service

import (
	"context"

	"github.com/biyonik/project-management-tool/internal/event"
	"github.com/biyonik/project-management-tool/internal/model"
)

// TaskService layers task lifecycle events on the shared operations.
type TaskService struct {
	*Entity[model.Task]
	bus *event.Bus
}

func NewTaskService(base *Entity[model.Task], bus *event.Bus) *TaskService {
	return &TaskService{Entity: base, bus: bus}
}

func (s *TaskService) Create(ctx context.Context, locale string, task *model.Task, actor model.Actor) *model.APIResponse {
	resp := s.Entity.Create(ctx, locale, task, actor)
	if resp.Success {
		s.bus.Publish(event.New(event.TaskCreated, resp.Data, actor.ID))
	}
	return resp
}

// ByProject lists live tasks belonging to a project.
func (s *TaskService) ByProject(ctx context.Context, locale, projectID string, params model.FindParams) *model.APIResponse {
	return s.FindAll(ctx, locale, model.Criteria{"project_id": projectID}, params)
}

// ByAssignee lists live tasks assigned to a user.
func (s *TaskService) ByAssignee(ctx context.Context, locale, assigneeID string, params model.FindParams) *model.APIResponse {
	return s.FindAll(ctx, locale, model.Criteria{"assignee_id": assigneeID}, params)
}

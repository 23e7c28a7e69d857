package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/biyonik/project-management-tool/internal/event"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/repository"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

// UserService adds user-specific rules on top of the shared lifecycle:
// email uniqueness among live users, password hashing, and lifecycle
// events for subscribers.
type UserService struct {
	*Entity[model.User]
	users repository.EntityStore[model.User]
	bus   *event.Bus
}

func NewUserService(base *Entity[model.User], users repository.EntityStore[model.User], bus *event.Bus) *UserService {
	return &UserService{Entity: base, users: users, bus: bus}
}

// Create registers a new user. The plain password is hashed before it ever
// reaches the store; a soft deleted user's email is free for reuse.
func (s *UserService) Create(ctx context.Context, locale string, user *model.User, password string, actor model.Actor) *model.APIResponse {
	if resp := s.checkEmailFree(ctx, locale, user.Email, ""); resp != nil {
		return resp
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return s.fail(locale, err, "")
	}
	user.PasswordHash = string(hash)

	resp := s.Entity.Create(ctx, locale, user, actor)
	if resp.Success {
		s.bus.Publish(event.New(event.UserCreated, resp.Data, actor.ID))
	}
	return resp
}

// Update applies a partial update. A new email must stay unique and a new
// password is hashed into password_hash before the patch hits the store.
func (s *UserService) Update(ctx context.Context, locale, id string, patch model.Patch, actor model.Actor) *model.APIResponse {
	if email, ok := patch["email"].(string); ok {
		if resp := s.checkEmailFree(ctx, locale, email, id); resp != nil {
			return resp
		}
	}

	if password, ok := patch["password"].(string); ok {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return s.fail(locale, err, id)
		}
		delete(patch, "password")
		patch["password_hash"] = string(hash)
	}

	resp := s.Entity.Update(ctx, locale, id, patch, actor)
	if resp.Success {
		s.bus.Publish(event.New(event.UserUpdated, resp.Data, actor.ID))
	}
	return resp
}

func (s *UserService) SoftDelete(ctx context.Context, locale, id, reason string, actor model.Actor) *model.APIResponse {
	resp := s.Entity.SoftDelete(ctx, locale, id, reason, actor)
	if resp.Success {
		s.bus.Publish(event.New(event.UserDeleted, id, actor.ID))
	}
	return resp
}

func (s *UserService) Restore(ctx context.Context, locale, id string, actor model.Actor) *model.APIResponse {
	resp := s.Entity.Restore(ctx, locale, id, actor)
	if resp.Success {
		s.bus.Publish(event.New(event.UserRestored, resp.Data, actor.ID))
	}
	return resp
}

// Profile returns the user with their live projects loaded.
func (s *UserService) Profile(ctx context.Context, locale, id string) *model.APIResponse {
	return s.WithRelations(ctx, locale, id, []string{"projects"})
}

// ActiveUsers lists live users flagged active.
func (s *UserService) ActiveUsers(ctx context.Context, locale string, params model.FindParams) *model.APIResponse {
	return s.FindAll(ctx, locale, model.Criteria{"is_active": true}, params)
}

func (s *UserService) checkEmailFree(ctx context.Context, locale, email, excludeID string) *model.APIResponse {
	exists, err := s.users.Exists(ctx, "email", email, excludeID)
	if err != nil {
		return s.fail(locale, err, excludeID)
	}
	if exists {
		return model.ErrorResponse(apierror.CodeEmailExists,
			s.messages.Message("user.email.exists", locale, map[string]string{"email": email}), "")
	}
	return nil
}

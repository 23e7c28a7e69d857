package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/biyonik/project-management-tool/internal/audit"
	"github.com/biyonik/project-management-tool/internal/event"
	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

// memUserStore is an in-memory EntityStore[model.User] with deterministic
// ordering so pagination behaves like the real store.
type memUserStore struct {
	mu    sync.Mutex
	users []*model.User
}

func (s *memUserStore) Name() string { return "user" }

func (s *memUserStore) find(id string) *model.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *memUserStore) FindByID(_ context.Context, id string, includeDeleted bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil || (!includeDeleted && !u.Live()) {
		return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (s *memUserStore) FindOneBy(_ context.Context, column string, value any) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if column != "email" {
		return nil, fmt.Errorf("column %q: %w", column, model.ErrInvalidField)
	}
	for _, u := range s.users {
		if u.Email == value && u.Live() {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user by %s: %w", column, model.ErrNotFound)
}

func (s *memUserStore) matches(u *model.User, criteria model.Criteria) bool {
	for column, value := range criteria {
		switch column {
		case "is_active":
			if u.IsActive != value {
				return false
			}
		case "email":
			if u.Email != value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (s *memUserStore) FindByCriteria(_ context.Context, criteria model.Criteria, params model.FindParams) ([]*model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	params = params.Normalized()

	var matched []*model.User
	for _, u := range s.users {
		if u.Live() && s.matches(u, criteria) {
			copied := *u
			matched = append(matched, &copied)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *memUserStore) FindByStatus(_ context.Context, status model.ArchiveStatus, params model.FindParams) ([]*model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	params = params.Normalized()

	var matched []*model.User
	for _, u := range s.users {
		if u.ArchiveStatus == status {
			copied := *u
			matched = append(matched, &copied)
		}
	}

	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *memUserStore) Create(_ context.Context, u *model.User, actorID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.CreatedBy = actorID
	u.UpdatedAt = now
	u.UpdatedBy = actorID
	u.ArchiveStatus = model.StatusActive
	s.users = append(s.users, u)
	copied := *u
	return &copied, nil
}

func (s *memUserStore) Update(_ context.Context, id string, patch model.Patch, actorID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil || !u.Live() {
		return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
	}
	for column, value := range patch {
		switch column {
		case "email":
			u.Email = value.(string)
		case "full_name":
			u.FullName = value.(string)
		case "password_hash":
			u.PasswordHash = value.(string)
		case "is_active":
			u.IsActive = value.(bool)
		default:
			return nil, fmt.Errorf("patch column %q: %w", column, model.ErrInvalidField)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	u.UpdatedBy = actorID
	copied := *u
	return &copied, nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", id, model.ErrNotFound)
}

func (s *memUserStore) SoftDelete(_ context.Context, id, actorID, reason string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil || !u.Live() {
		return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
	}
	now := time.Now().UTC()
	u.DeletedAt = &now
	u.DeletedBy = actorID
	u.DeletionReason = reason
	u.ArchiveStatus = model.StatusDeleted
	copied := *u
	return &copied, nil
}

func (s *memUserStore) Archive(_ context.Context, id, actorID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil || !u.Live() {
		return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
	}
	now := time.Now().UTC()
	u.ArchiveStatus = model.StatusArchived
	u.ArchiveDate = &now
	u.ArchivedBy = actorID
	copied := *u
	return &copied, nil
}

func (s *memUserStore) Restore(_ context.Context, id, actorID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
	}
	u.DeletedAt = nil
	u.DeletedBy = ""
	u.DeletionReason = ""
	u.ArchiveStatus = model.StatusActive
	u.ArchiveDate = nil
	u.ArchivedBy = ""
	u.UpdatedAt = time.Now().UTC()
	u.UpdatedBy = actorID
	copied := *u
	return &copied, nil
}

func (s *memUserStore) Exists(_ context.Context, column string, value any, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if column == "email" && u.Email == value && u.ID != excludeID && u.Live() {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) LoadRelations(_ context.Context, _ *model.User, names []string) error {
	for _, name := range names {
		if name != "projects" {
			return fmt.Errorf("relation %q on user: %w", name, model.ErrRelationUnknown)
		}
	}
	return nil
}

// memAuditLog records changes synchronously for assertions.
type memAuditLog struct {
	mu      sync.Mutex
	changes []audit.Change
}

func (l *memAuditLog) LogChange(_ context.Context, change audit.Change) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, change)
	return nil
}

func (l *memAuditLog) recorded() []audit.Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]audit.Change(nil), l.changes...)
}

type userFixture struct {
	service *UserService
	store   *memUserStore
	trail   *memAuditLog
	bus     *event.Bus
}

func newUserFixture(t *testing.T, devMode bool) *userFixture {
	t.Helper()

	messages, err := i18n.NewMessageSource("en")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memUserStore{}
	trail := &memAuditLog{}
	bus := event.NewBus(log)

	base := NewEntity[model.User](store, trail, messages, log,
		func(u *model.User) string { return u.ID }, devMode)

	return &userFixture{
		service: NewUserService(base, store, bus),
		store:   store,
		trail:   trail,
		bus:     bus,
	}
}

var testActor = model.Actor{ID: "admin-1", IP: "10.0.0.1", UserAgent: "go-test"}

func createUser(t *testing.T, f *userFixture, email string) *model.User {
	t.Helper()
	resp := f.service.Create(context.Background(), "en", &model.User{
		Email:    email,
		FullName: "Test User",
		Role:     "member",
		IsActive: true,
	}, "s3cret-pass", testActor)
	require.True(t, resp.Success)
	return resp.Data.(*model.User)
}

func TestUserCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("hashes the password and records one audit entry", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		require.NotEmpty(t, user.ID)
		require.Equal(t, model.StatusActive, user.ArchiveStatus)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

		changes := f.trail.recorded()
		require.Len(t, changes, 1)
		require.Equal(t, audit.ActionCreate, changes[0].Action)
		require.Equal(t, "user", changes[0].EntityType)
		require.Equal(t, user.ID, changes[0].EntityID)
		require.Nil(t, changes[0].OldValues)
		require.NotNil(t, changes[0].NewValues)
		require.Equal(t, testActor.ID, changes[0].ActorID)
		require.Equal(t, testActor.IP, changes[0].IPAddress)
	})

	t.Run("rejects a duplicate email without touching the store", func(t *testing.T) {
		f := newUserFixture(t, false)
		createUser(t, f, "a@example.com")

		resp := f.service.Create(ctx, "en", &model.User{Email: "a@example.com"}, "pw", testActor)
		require.False(t, resp.Success)
		require.Equal(t, apierror.CodeEmailExists, resp.Error.Code)
		require.Contains(t, resp.Error.Message, "a@example.com")
		require.Len(t, f.trail.recorded(), 1, "failed create must not audit")
	})

	t.Run("a soft deleted user's email is reusable", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		resp := f.service.SoftDelete(ctx, "en", user.ID, "offboarding", testActor)
		require.True(t, resp.Success)

		resp = f.service.Create(ctx, "en", &model.User{Email: "a@example.com", IsActive: true}, "pw", testActor)
		require.True(t, resp.Success)
	})
}

func TestUserUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("audits old and new snapshots", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		resp := f.service.Update(ctx, "en", user.ID, model.Patch{"full_name": "Renamed"}, testActor)
		require.True(t, resp.Success)
		require.Equal(t, "Renamed", resp.Data.(*model.User).FullName)

		changes := f.trail.recorded()
		require.Len(t, changes, 2)
		update := changes[1]
		require.Equal(t, audit.ActionUpdate, update.Action)
		require.Equal(t, "Test User", update.OldValues.(*model.User).FullName)
		require.Equal(t, "Renamed", update.NewValues.(*model.User).FullName)
	})

	t.Run("rehashes a password patch", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		resp := f.service.Update(ctx, "en", user.ID, model.Patch{"password": "new-pass"}, testActor)
		require.True(t, resp.Success)

		stored, err := f.store.FindByID(ctx, user.ID, false)
		require.NoError(t, err)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-pass")))
	})

	t.Run("rejects taking another live user's email", func(t *testing.T) {
		f := newUserFixture(t, false)
		createUser(t, f, "a@example.com")
		other := createUser(t, f, "b@example.com")

		resp := f.service.Update(ctx, "en", other.ID, model.Patch{"email": "a@example.com"}, testActor)
		require.False(t, resp.Success)
		require.Equal(t, apierror.CodeEmailExists, resp.Error.Code)
	})

	t.Run("keeping your own email is fine", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		resp := f.service.Update(ctx, "en", user.ID, model.Patch{"email": "a@example.com"}, testActor)
		require.True(t, resp.Success)
	})
}

func TestUserLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("soft delete hides the user from live reads", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		resp := f.service.SoftDelete(ctx, "en", user.ID, "requested", testActor)
		require.True(t, resp.Success)

		resp = f.service.FindByID(ctx, "en", user.ID, false)
		require.False(t, resp.Success)
		require.Equal(t, apierror.CodeNotFound, resp.Error.Code)

		resp = f.service.FindByID(ctx, "en", user.ID, true)
		require.True(t, resp.Success)
		deleted := resp.Data.(*model.User)
		require.Equal(t, model.StatusDeleted, deleted.ArchiveStatus)
		require.NotNil(t, deleted.DeletedAt)
		require.Equal(t, "requested", deleted.DeletionReason)
	})

	t.Run("soft deleting twice reports not found", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		require.True(t, f.service.SoftDelete(ctx, "en", user.ID, "", testActor).Success)
		resp := f.service.SoftDelete(ctx, "en", user.ID, "", testActor)
		require.False(t, resp.Success)
		require.Equal(t, apierror.CodeNotFound, resp.Error.Code)
	})

	t.Run("restore clears deletion and archive state together", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		require.True(t, f.service.Archive(ctx, "en", user.ID, testActor).Success)
		require.True(t, f.service.SoftDelete(ctx, "en", user.ID, "cleanup", testActor).Success)

		resp := f.service.Restore(ctx, "en", user.ID, testActor)
		require.True(t, resp.Success)

		restored := resp.Data.(*model.User)
		require.Equal(t, model.StatusActive, restored.ArchiveStatus)
		require.Nil(t, restored.DeletedAt)
		require.Empty(t, restored.DeletedBy)
		require.Empty(t, restored.DeletionReason)
		require.Nil(t, restored.ArchiveDate)
		require.Empty(t, restored.ArchivedBy)
	})

	t.Run("archiving an archived user refreshes the stamp", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		first := f.service.Archive(ctx, "en", user.ID, testActor)
		require.True(t, first.Success)

		second := f.service.Archive(ctx, "en", user.ID, model.Actor{ID: "admin-2"})
		require.True(t, second.Success)
		require.Equal(t, "admin-2", second.Data.(*model.User).ArchivedBy)
	})

	t.Run("every mutation writes exactly one audit entry", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		f.service.Update(ctx, "en", user.ID, model.Patch{"full_name": "X"}, testActor)
		f.service.Archive(ctx, "en", user.ID, testActor)
		f.service.SoftDelete(ctx, "en", user.ID, "", testActor)
		f.service.Restore(ctx, "en", user.ID, testActor)

		actions := []string{}
		for _, c := range f.trail.recorded() {
			actions = append(actions, c.Action)
		}
		require.Equal(t, []string{
			audit.ActionCreate, audit.ActionUpdate, audit.ActionArchive,
			audit.ActionSoftDelete, audit.ActionRestore,
		}, actions)
	})
}

func TestUserListing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("paginates 25 users across 3 pages", func(t *testing.T) {
		f := newUserFixture(t, false)
		for i := 0; i < 25; i++ {
			createUser(t, f, fmt.Sprintf("user%02d@example.com", i))
		}

		resp := f.service.FindAll(ctx, "en", nil, model.FindParams{Page: 3, Limit: 10})
		require.True(t, resp.Success)
		require.Len(t, resp.Data.([]*model.User), 5)
		require.Equal(t, 3, resp.Meta.Page)
		require.Equal(t, 25, resp.Meta.TotalItems)
		require.Equal(t, 3, resp.Meta.TotalPages)
		require.False(t, resp.Meta.HasNextPage)
		require.True(t, resp.Meta.HasPreviousPage)
	})

	t.Run("pages do not overlap or drop rows", func(t *testing.T) {
		f := newUserFixture(t, false)
		for i := 0; i < 25; i++ {
			createUser(t, f, fmt.Sprintf("user%02d@example.com", i))
		}

		seen := map[string]bool{}
		for page := 1; page <= 3; page++ {
			resp := f.service.FindAll(ctx, "en", nil, model.FindParams{Page: page, Limit: 10})
			require.True(t, resp.Success)
			for _, u := range resp.Data.([]*model.User) {
				require.False(t, seen[u.ID], "user %s appeared twice", u.ID)
				seen[u.ID] = true
			}
		}
		require.Len(t, seen, 25)
	})

	t.Run("deleted users appear only in the deleted listing", func(t *testing.T) {
		f := newUserFixture(t, false)
		keep := createUser(t, f, "keep@example.com")
		gone := createUser(t, f, "gone@example.com")
		require.True(t, f.service.SoftDelete(ctx, "en", gone.ID, "", testActor).Success)

		resp := f.service.FindAll(ctx, "en", nil, model.FindParams{})
		require.True(t, resp.Success)
		live := resp.Data.([]*model.User)
		require.Len(t, live, 1)
		require.Equal(t, keep.ID, live[0].ID)

		resp = f.service.FindByStatus(ctx, "en", model.StatusDeleted, model.FindParams{})
		require.True(t, resp.Success)
		deleted := resp.Data.([]*model.User)
		require.Len(t, deleted, 1)
		require.Equal(t, gone.ID, deleted[0].ID)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		f := newUserFixture(t, false)
		resp := f.service.FindByStatus(ctx, "en", "LOST", model.FindParams{})
		require.False(t, resp.Success)
		require.Equal(t, apierror.CodeValidation, resp.Error.Code)
	})

	t.Run("empty page returns an empty data array", func(t *testing.T) {
		f := newUserFixture(t, false)
		resp := f.service.FindAll(ctx, "en", nil, model.FindParams{Page: 5, Limit: 10})
		require.True(t, resp.Success)
		require.Empty(t, resp.Data.([]*model.User))
		require.Equal(t, 0, resp.Meta.TotalItems)
	})
}

func TestLocalizedMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newUserFixture(t, false)
	user := createUser(t, f, "a@example.com")

	resp := f.service.Update(ctx, "tr", user.ID, model.Patch{"full_name": "X"}, testActor)
	require.True(t, resp.Success)
	require.Equal(t, "Kullanıcı başarıyla güncellendi", resp.Message)

	resp = f.service.FindByID(ctx, "tr", "missing-id", false)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error.Message, "missing-id")
	require.Contains(t, resp.Error.Message, "bulunamadı")
}

func TestErrorDetailExposure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("development mode includes details", func(t *testing.T) {
		f := newUserFixture(t, true)
		user := createUser(t, f, "a@example.com")

		resp := f.service.Update(ctx, "en", user.ID, model.Patch{"shoe_size": 42}, testActor)
		require.False(t, resp.Success)
		require.Equal(t, apierror.CodeValidation, resp.Error.Code)
		require.Contains(t, resp.Error.Details, "shoe_size")
	})

	t.Run("production mode hides details", func(t *testing.T) {
		f := newUserFixture(t, false)
		user := createUser(t, f, "a@example.com")

		resp := f.service.Update(ctx, "en", user.ID, model.Patch{"shoe_size": 42}, testActor)
		require.False(t, resp.Success)
		require.Empty(t, resp.Error.Details)
	})
}

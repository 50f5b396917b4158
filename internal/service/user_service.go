package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Gabito0/yodlr-backend/internal/apperr"
	"github.com/Gabito0/yodlr-backend/internal/cache"
	"github.com/Gabito0/yodlr-backend/internal/model"
	"github.com/Gabito0/yodlr-backend/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// UpdatePatch carries the optional fields of a partial user update. Nil
// fields are left untouched. The admin flag is deliberately absent: it is not
// settable through this path.
type UpdatePatch struct {
	Email           *string
	FirstName       *string
	LastName        *string
	State           *model.UserState
	CurrentPassword *string
	NewPassword     *string
}

// UserService implements the user lifecycle: authentication, registration,
// reads, partial updates, activation and deletion.
type UserService interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error)
	Add(ctx context.Context, email, password, firstName, lastName string, isAdmin bool, state model.UserState) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	Update(ctx context.Context, id uint, patch UpdatePatch) (*model.User, error)
	Activate(ctx context.Context, id uint) (*model.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func userKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// Authenticate verifies an email/password pair and returns the matching user.
// A missing user and a wrong password fail with the identical message so the
// response never reveals which half was wrong.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid email/password")
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("Invalid email/password")
	}
	return user, nil
}

// Register creates a self-service account. It can never grant admin rights or
// skip the pending state.
func (s *userService) Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error) {
	return s.Add(ctx, email, password, firstName, lastName, false, model.StatePending)
}

// Add creates a user with explicit admin flag and state. The pre-insert
// duplicate check is racy against concurrent registrations; the unique index
// on email closes that window and its violation maps to the same error.
func (s *userService) Add(ctx context.Context, email, password, firstName, lastName string, isAdmin bool, state model.UserState) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check duplicate email: %w", err)
	}
	if existing != nil {
		return nil, apperr.BadRequest("Duplicate email: %s", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if state == "" {
		state = model.StatePending
	}
	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		IsAdmin:      isAdmin,
		State:        state,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("Duplicate email: %s", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// List returns all users in store order.
func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns a user by id, read through the cache.
func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, userKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No user found with id: %d", id)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// Update applies a partial update. When a new password is requested the
// current password must verify against the stored hash first; on mismatch
// nothing is written.
func (s *userService) Update(ctx context.Context, id uint, patch UpdatePatch) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No user found with id: %d", id)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	cols := map[string]interface{}{}
	if patch.Email != nil {
		cols["email"] = *patch.Email
	}
	if patch.FirstName != nil {
		cols["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		cols["last_name"] = *patch.LastName
	}
	if patch.State != nil {
		cols["state"] = *patch.State
	}

	if patch.NewPassword != nil {
		if patch.CurrentPassword == nil {
			return nil, apperr.BadRequest("Current password is required to set a new password")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*patch.CurrentPassword)) != nil {
			return nil, apperr.Unauthorized("Incorrect password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.NewPassword), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		cols["password_hash"] = string(hash)
	}

	if len(cols) == 0 {
		return user, nil
	}

	if err := s.repo.UpdateColumns(ctx, id, cols); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && patch.Email != nil {
			return nil, apperr.BadRequest("Duplicate email: %s", *patch.Email)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, userKey(id))

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No user found with id: %d", id)
		}
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return updated, nil
}

// Activate transitions a pending user to active. The transition is one-way;
// activating an already-active user fails.
func (s *userService) Activate(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No user found with id: %d", id)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.State == model.StateActive {
		return nil, apperr.BadRequest("User with id %d is already active", id)
	}

	if err := s.repo.UpdateColumns(ctx, id, map[string]interface{}{"state": model.StateActive}); err != nil {
		return nil, fmt.Errorf("activate user: %w", err)
	}
	_ = s.cache.Delete(ctx, userKey(id))

	user.State = model.StateActive
	return user, nil
}

// Delete removes a user permanently.
func (s *userService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("No user found with id: %d", id)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, userKey(id))
	return nil
}

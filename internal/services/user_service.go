package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"whatsclone/internal/authz"
	"whatsclone/internal/models"
	"whatsclone/internal/repositories"
)

// UserService keeps the local user directory in step with the identity provider.
type UserService struct {
	repo repositories.UserRepository
	now  func() time.Time
}

func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// Synchronize upserts the caller's profile from verified token claims and
// refreshes last_seen. An existing row with the same e-mail keeps its id, so a
// changed subject is applied as an update of that row.
func (s *UserService) Synchronize(ctx context.Context, claims *authz.Claims) (*models.User, error) {
	email := strings.TrimSpace(claims.Email)
	if email == "" {
		log.Printf("[users][sync] no email claim for sub=%s, skipping", claims.Subject)
		return nil, fmt.Errorf("%w: email", authz.ErrMissingClaim)
	}

	user := &models.User{
		ID:        claims.Subject,
		FirstName: claims.FirstName(),
		LastName:  claims.FamilyName,
		Email:     email,
		LastSeen:  s.now().UTC(),
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != user.ID {
			log.Printf("[users][sync] email=%q already bound to id=%s, keeping it (token sub=%s)", email, existing.ID, user.ID)
		}
		user.ID = existing.ID
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) ListUsersExceptSelf(ctx context.Context, userID string) ([]models.UserResponse, error) {
	users, err := s.repo.ListExcept(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse(now))
	}
	return out, nil
}

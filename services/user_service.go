package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/store"
)

// UserService keeps the users table in step with Clerk.
type UserService struct {
	users store.Users
}

func NewUserService(users store.Users) *UserService {
	return &UserService{users: users}
}

func (s *UserService) CreateUser(ctx context.Context, clerkID string) (uuid.UUID, error) {
	if clerkID == "" {
		return uuid.Nil, errors.New("clerk id is required")
	}
	id, err := s.users.EnsureUser(ctx, clerkID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// DeleteUserByClerkID removes the user with every mood log and the streak
// record. Deleting an unknown user is not an error.
func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	err := s.users.DeleteUserByClerkID(ctx, clerkID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		log.Printf("Delete for unknown Clerk ID %s ignored", clerkID)
		return nil
	}
	return err
}

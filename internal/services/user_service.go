package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// SetSubscribed toggles the acting administrator's new-request
	// notification subscription.
	SetSubscribed(ctx context.Context, subscribed bool) error
}

type userService struct {
	db        repositories.DB
	usersRepo repositories.UsersRepository
	logsRepo  repositories.LogsRepository
}

func NewUserService(db repositories.DB, usersRepo repositories.UsersRepository, logsRepo repositories.LogsRepository) UserService {
	return &userService{db: db, usersRepo: usersRepo, logsRepo: logsRepo}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if user.Username == "" {
		return &common.ValidationError{Field: "username", Message: "must not be empty"}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.usersRepo.WithTx(tx).Create(ctx, user); err != nil {
		return err
	}
	if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		InitiatingUserID: actor.ID,
		AffectedUserID:   &user.ID,
		Category:         models.LogUserCreation,
		Message:          fmt.Sprintf("%s created user %q", actor.Username, user.Username),
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, &common.PermissionError{Reason: "administrator privileges required"}
	}
	user, err := s.usersRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "user", Key: userID.String()}
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.usersRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "user", Key: username}
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.usersRepo.List(ctx, limit, offset)
}

func (s *userService) SetSubscribed(ctx context.Context, subscribed bool) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	actor.Subscribed = subscribed
	return s.usersRepo.Update(ctx, actor)
}

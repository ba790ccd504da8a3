package repository

import (
	"context"

	"vulnDemo/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	FindByCredentials(ctx context.Context, username, password string) (*models.User, error)
	Create(ctx context.Context, username, password string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

var _ UserRepositoryI = (*UserRepository)(nil)

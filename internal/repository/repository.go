package repository

import (
	"context"

	"github.com/mr1hm/flood-response/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	// GetUserByEmail returns (nil, nil) when no account exists for the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type AlertRepository interface {
	AddAlert(ctx context.Context, a *models.FloodAlert) error
	// ListAlerts returns all alerts ordered by creation time, newest first.
	ListAlerts(ctx context.Context) ([]models.FloodAlert, error)
}

type ResourceRepository interface {
	AddResource(ctx context.Context, r *models.Resource) error
	GetResourceByID(ctx context.Context, id string) (*models.Resource, error)
	// ListResources returns all resources of one kind ordered by creation
	// time, newest first.
	ListResources(ctx context.Context, kind models.ResourceKind) ([]models.Resource, error)
}

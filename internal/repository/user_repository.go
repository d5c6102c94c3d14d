package repository

import (
	"context"
	"time"

	"github.com/spec-kit/commerce-service/internal/dao"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
)

// UserRepository is the stable interface controllers depend on. Each method
// forwards to the service layer of the same name and returns its result
// unchanged, including failures.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindToken(ctx context.Context, query dao.TokenQuery) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	SaveDocuments(ctx context.Context, id string, docs []domain.Document) (*domain.User, error)
	PurgeClosedAccounts(ctx context.Context, cutoff time.Time) (int64, error)
}

type userRepository struct {
	service service.UserService
}

// NewUserRepository constructs the repository over a service.
func NewUserRepository(svc service.UserService) UserRepository {
	return &userRepository{service: svc}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.service.Create(ctx, user)
}

func (r *userRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.service.FindAll(ctx)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.service.FindByID(ctx, id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.service.FindByEmail(ctx, email)
}

func (r *userRepository) FindToken(ctx context.Context, query dao.TokenQuery) (*domain.User, error) {
	return r.service.FindToken(ctx, query)
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	return r.service.Save(ctx, user)
}

func (r *userRepository) SaveDocuments(ctx context.Context, id string, docs []domain.Document) (*domain.User, error) {
	return r.service.SaveDocuments(ctx, id, docs)
}

func (r *userRepository) PurgeClosedAccounts(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.service.PurgeClosedAccounts(ctx, cutoff)
}

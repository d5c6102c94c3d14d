package service

import (
	"context"
	"time"

	"github.com/spec-kit/commerce-service/internal/dao"
	"github.com/spec-kit/commerce-service/internal/domain"
)

// UserService wraps the user DAO under domain-oriented names. It is pure
// delegation today; the layer exists as the seam where business rules attach
// without changing the repository contract above it. Failures from the DAO
// propagate verbatim.
type UserService interface {
	Create(ctx context.Context, user *domain.User) error
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindToken(ctx context.Context, query dao.TokenQuery) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	SaveDocuments(ctx context.Context, id string, docs []domain.Document) (*domain.User, error)
	PurgeClosedAccounts(ctx context.Context, cutoff time.Time) (int64, error)
}

type userService struct {
	users dao.UserDAO
}

// NewUserService constructs the service over a DAO.
func NewUserService(users dao.UserDAO) UserService {
	return &userService{users: users}
}

func (s *userService) Create(ctx context.Context, user *domain.User) error {
	return s.users.Create(ctx, user)
}

func (s *userService) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.users.FindAll(ctx)
}

func (s *userService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *userService) FindToken(ctx context.Context, query dao.TokenQuery) (*domain.User, error) {
	return s.users.FindByToken(ctx, query)
}

func (s *userService) Save(ctx context.Context, user *domain.User) error {
	return s.users.Save(ctx, user)
}

func (s *userService) SaveDocuments(ctx context.Context, id string, docs []domain.Document) (*domain.User, error) {
	return s.users.SaveDocuments(ctx, id, docs)
}

func (s *userService) PurgeClosedAccounts(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.users.DeleteClosedBefore(ctx, cutoff)
}

package repository

import (
	"context"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
)

// TicketRepository is the controller-facing purchase recording interface.
type TicketRepository interface {
	CreateTicket(ctx context.Context, ticket *domain.Ticket) error
	AllPurchases(ctx context.Context, email string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	service service.TicketService
}

// NewTicketRepository constructs the repository over a service.
func NewTicketRepository(svc service.TicketService) TicketRepository {
	return &ticketRepository{service: svc}
}

func (r *ticketRepository) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	return r.service.CreateTicket(ctx, ticket)
}

func (r *ticketRepository) AllPurchases(ctx context.Context, email string) ([]domain.Ticket, error) {
	return r.service.AllPurchases(ctx, email)
}

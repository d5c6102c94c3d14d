package service

import (
	"context"

	"github.com/spec-kit/commerce-service/internal/dao"
	"github.com/spec-kit/commerce-service/internal/domain"
)

// TicketService wraps the ticket DAO. Delegation only; the seam mirrors
// UserService.
type TicketService interface {
	CreateTicket(ctx context.Context, ticket *domain.Ticket) error
	AllPurchases(ctx context.Context, email string) ([]domain.Ticket, error)
}

type ticketService struct {
	tickets dao.TicketDAO
}

// NewTicketService constructs the service over a DAO.
func NewTicketService(tickets dao.TicketDAO) TicketService {
	return &ticketService{tickets: tickets}
}

func (s *ticketService) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	return s.tickets.CreateOne(ctx, ticket)
}

func (s *ticketService) AllPurchases(ctx context.Context, email string) ([]domain.Ticket, error) {
	return s.tickets.FindByEmail(ctx, email)
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// TicketsHandler manages purchase recording endpoints.
type TicketsHandler struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets repository.TicketRepository, dispatcher events.Dispatcher) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, dispatcher: dispatcher}
}

// CreateTicket handles POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items required", nil)
	}

	ticket := &domain.Ticket{
		Code:             generateTicketCode(),
		Purchaser:        principal.User.Email,
		Items:            make([]domain.TicketItem, 0, len(req.Items)),
		PurchaseDatetime: time.Now(),
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return apperrors.NewValidationError("item quantity must be positive", nil)
		}
		ticket.Items = append(ticket.Items, domain.TicketItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
		ticket.Amount += float64(item.Quantity) * item.UnitPrice
	}

	if err := h.tickets.CreateTicket(c.UserContext(), ticket); err != nil {
		return apperrors.MapError(err)
	}

	if h.dispatcher != nil {
		_ = h.dispatcher.Publish(c.UserContext(), events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketCreated,
			UserID:    principal.User.ID.Hex(),
			Email:     ticket.Purchaser,
			Timestamp: time.Now(),
			Payload:   events.TicketCreatedPayload{Code: ticket.Code, Amount: ticket.Amount},
		})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"payload": dto.NewTicketResponse(ticket),
	})
}

// ListPurchases handles GET /api/tickets.
func (h *TicketsHandler) ListPurchases(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	tickets, err := h.tickets.AllPurchases(c.UserContext(), principal.User.Email)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"payload": items,
	})
}

func generateTicketCode() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

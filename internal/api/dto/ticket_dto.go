package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// CreateTicketItem is one purchased line in a create request.
type CreateTicketItem struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CreateTicketRequest records a purchase.
type CreateTicketRequest struct {
	Items []CreateTicketItem `json:"items"`
}

// TicketResponse is the purchase shape returned to callers.
type TicketResponse struct {
	ID               string              `json:"id"`
	Code             string              `json:"code"`
	Purchaser        string              `json:"purchaser"`
	Items            []domain.TicketItem `json:"items"`
	Amount           float64             `json:"amount"`
	PurchaseDatetime time.Time           `json:"purchase_datetime"`
}

// NewTicketResponse maps the domain model.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	items := ticket.Items
	if items == nil {
		items = []domain.TicketItem{}
	}
	return TicketResponse{
		ID:               ticket.ID.Hex(),
		Code:             ticket.Code,
		Purchaser:        ticket.Purchaser,
		Items:            items,
		Amount:           ticket.Amount,
		PurchaseDatetime: ticket.PurchaseDatetime,
	}
}

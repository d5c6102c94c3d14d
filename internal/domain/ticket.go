package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketItem is one purchased line within a ticket.
type TicketItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Title     string  `bson:"title" json:"title"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
}

// Ticket records a completed purchase. Tickets reference their buyer by
// email, not by an owning pointer.
type Ticket struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code             string             `bson:"code" json:"code"`
	Purchaser        string             `bson:"purchaser" json:"purchaser"`
	Items            []TicketItem       `bson:"items" json:"items"`
	Amount           float64            `bson:"amount" json:"amount"`
	PurchaseDatetime time.Time          `bson:"purchase_datetime" json:"purchase_datetime"`
}

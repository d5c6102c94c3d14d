package dao

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/persistence"
)

// TicketDAO executes primitive persistence operations for purchase tickets.
type TicketDAO interface {
	CreateOne(ctx context.Context, ticket *domain.Ticket) error
	FindByEmail(ctx context.Context, email string) ([]domain.Ticket, error)
}

type ticketDAO struct {
	col *mongo.Collection
}

// NewTicketDAO returns a Mongo-backed implementation.
func NewTicketDAO(db *persistence.Mongo) TicketDAO {
	return &ticketDAO{col: db.Collection("tickets")}
}

func (d *ticketDAO) CreateOne(ctx context.Context, ticket *domain.Ticket) error {
	res, err := d.col.InsertOne(ctx, ticket)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ticket.ID = oid
	}
	return nil
}

func (d *ticketDAO) FindByEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "purchase_datetime", Value: -1}})
	cursor, err := d.col.Find(ctx, bson.M{"purchaser": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []domain.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

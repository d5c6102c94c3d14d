package dao

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/persistence"
)

// Token field selectors for FindByToken.
const (
	TokenFieldVerify = "token_status"
	TokenFieldReset  = "reset_token"
)

// TokenQuery selects a user by a stored token value, optionally requiring the
// paired expiration field to be in the future.
type TokenQuery struct {
	Field string
	Value string
	// NotExpiredAfter, when set, adds an expiration > t clause against the
	// field paired with the token (reset tokens carry one, verify tokens
	// do not).
	NotExpiredAfter *time.Time
}

// Filter renders the query as a Mongo filter document.
func (q TokenQuery) Filter() bson.M {
	filter := bson.M{q.Field: q.Value}
	if q.NotExpiredAfter != nil {
		if exp := expirationField(q.Field); exp != "" {
			filter[exp] = bson.M{"$gt": *q.NotExpiredAfter}
		}
	}
	return filter
}

// expirationField returns the expiration field paired with a token field.
// Verification tokens do not expire.
func expirationField(tokenField string) string {
	if tokenField == TokenFieldReset {
		return "reset_token_expiration"
	}
	return ""
}

// UserDAO executes primitive persistence operations for users against the
// document store. Lookups that can legitimately miss (email, token) return
// (nil, nil); FindByID reports a miss as mongo.ErrNoDocuments.
type UserDAO interface {
	Create(ctx context.Context, user *domain.User) error
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByToken(ctx context.Context, query TokenQuery) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	SaveDocuments(ctx context.Context, id string, docs []domain.Document) (*domain.User, error)
	DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type userDAO struct {
	col *mongo.Collection
}

// NewUserDAO returns a Mongo-backed implementation.
func NewUserDAO(db *persistence.Mongo) UserDAO {
	return &userDAO{col: db.Collection("users")}
}

func (d *userDAO) Create(ctx context.Context, user *domain.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Documents == nil {
		user.Documents = []domain.Document{}
	}
	res, err := d.col.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (d *userDAO) FindAll(ctx context.Context) ([]domain.User, error) {
	cursor, err := d.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (d *userDAO) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var user domain.User
	if err := d.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *userDAO) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := d.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *userDAO) FindByToken(ctx context.Context, query TokenQuery) (*domain.User, error) {
	var user domain.User
	err := d.col.FindOne(ctx, query.Filter()).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Save replaces the stored document with the in-memory state. Token updates
// are read-then-written, so concurrent writers race last-writer-wins.
func (d *userDAO) Save(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	res, err := d.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (d *userDAO) SaveDocuments(ctx context.Context, id string, docs []domain.Document) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	update := bson.M{"$set": bson.M{
		"documents":  docs,
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user domain.User
	if err := d.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *userDAO) DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.col.DeleteMany(ctx, bson.M{
		"token_expiration_closure": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole enumerates account roles.
type UserRole string

const (
	UserRoleStandard UserRole = "user"
	UserRolePremium  UserRole = "premium"
	UserRoleAdmin    UserRole = "admin"
)

// Document is an uploaded file reference attached to a user.
type Document struct {
	Name      string `bson:"name" json:"name"`
	Reference string `bson:"reference" json:"reference"`
}

// Required document categories for account completion.
const (
	DocumentDNI     = "dni"
	DocumentAddress = "address"
	DocumentBank    = "bank"
)

// User is the account aggregate. Status stays false until the email
// verification token is consumed; most privileged operations are gated on it.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Status       bool               `bson:"status" json:"status"`
	Role         UserRole           `bson:"role" json:"role"`

	// VerifyToken is the pending email-verification token; nil once consumed.
	VerifyToken *string `bson:"token_status" json:"-"`

	// ClosureExpiresAt marks the end of the account closure window.
	ClosureExpiresAt *time.Time `bson:"token_expiration_closure,omitempty" json:"-"`

	// ResetToken and ResetTokenExpiresAt hold one-time password reset state.
	ResetToken          *string    `bson:"reset_token" json:"-"`
	ResetTokenExpiresAt *time.Time `bson:"reset_token_expiration,omitempty" json:"-"`

	Documents []Document `bson:"documents" json:"documents"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// HasDocument reports whether a document with the given category name exists.
func (u *User) HasDocument(name string) bool {
	for _, doc := range u.Documents {
		if doc.Name == name {
			return true
		}
	}
	return false
}

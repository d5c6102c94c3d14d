package events

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventVerificationRequested  EventType = "verification_requested"
	EventAccountVerified        EventType = "account_verified"
	EventClosureStarted         EventType = "closure_started"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
	EventRolePromoted           EventType = "role_promoted"
	EventDocumentsUploaded      EventType = "documents_uploaded"
	EventTicketCreated          EventType = "ticket_created"
)

// Event represents a lifecycle event emitted by the account controller.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Email     string      `json:"email,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// VerificationRequestedPayload carries the activation link for delivery.
type VerificationRequestedPayload struct {
	ActivationLink string `json:"activation_link"`
}

// PasswordResetRequestedPayload carries the reset link for delivery.
type PasswordResetRequestedPayload struct {
	ResetLink string    `json:"reset_link"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ClosureStartedPayload carries the closure window boundary.
type ClosureStartedPayload struct {
	WindowEndsAt time.Time `json:"window_ends_at"`
}

// RolePromotedPayload carries the role transition.
type RolePromotedPayload struct {
	OldRole domain.UserRole `json:"old_role"`
	NewRole domain.UserRole `json:"new_role"`
}

// DocumentsUploadedPayload lists the stored document categories.
type DocumentsUploadedPayload struct {
	Names []string `json:"names"`
}

// TicketCreatedPayload carries purchase metadata.
type TicketCreatedPayload struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

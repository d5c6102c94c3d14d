package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/dao"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// Service orchestrates the account lifecycle: registration, email
// verification, login/session, password reset, role promotion, document
// upload and closure. It composes repository calls with token generation,
// expiration checks and outbound notification events. Every deviation is
// returned as a DomainError and checked immediately by the caller.
type Service struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokens     *auth.TokenManager
	sessions   *auth.SessionStore

	bcryptCost    int
	resetTokenTTL time.Duration
	closureWindow time.Duration
	frontendURL   string
}

// Dependencies bundles collaborator requirements for the account service.
type Dependencies struct {
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	TokenManager *auth.TokenManager
	Sessions     *auth.SessionStore
}

// NewService builds the lifecycle controller.
func NewService(cfg config.Config, deps Dependencies) *Service {
	return &Service{
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		tokens:        deps.TokenManager,
		sessions:      deps.Sessions,
		bcryptCost:    cfg.Auth.BcryptCost,
		resetTokenTTL: cfg.Auth.ResetTokenTTL,
		closureWindow: cfg.Auth.ClosureWindow,
		frontendURL:   cfg.App.FrontendURL,
	}
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserProjection is the listing shape returned by ListUsers.
type UserProjection struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Surname   string            `json:"surname"`
	Email     string            `json:"email"`
	Status    bool              `json:"status"`
	Role      domain.UserRole   `json:"role"`
	Documents []domain.Document `json:"documents"`
}

// Register creates a new account in PendingVerification state.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Status:       false,
		Role:         domain.UserRoleStandard,
		Documents:    []domain.Document{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventUserRegistered,
		UserID: user.ID.Hex(),
		Email:  user.Email,
	})
	return user, nil
}

// Login authenticates credentials and re-checks the stored status: an
// unverified account cannot open a session. Login deliberately does not
// touch the closure window field.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if user == nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Status {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account not verified")
	}

	token, exp, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Logout revokes the session credential. Requires a verified requester.
func (s *Service) Logout(ctx context.Context, principal *domain.User, tokenID string, tokenExpiry time.Time) error {
	if !principal.Status {
		return apperrors.NewForbidden("account not verified")
	}
	if s.sessions != nil && tokenID != "" {
		if err := s.sessions.Revoke(ctx, tokenID, tokenExpiry); err != nil {
			return apperrors.MapError(err)
		}
	}
	return nil
}

// RequestVerification generates a fresh verification token for the
// authenticated principal and requests delivery of the activation link. The
// response does not wait for delivery.
func (s *Service) RequestVerification(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("user", map[string]any{"email": email})
	}

	token := uuid.NewString()
	user.VerifyToken = &token
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventVerificationRequested,
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Payload: events.VerificationRequestedPayload{
			ActivationLink: fmt.Sprintf("%s/users/verified-account/%s", s.frontendURL, token),
		},
	})
	return nil
}

// ConfirmVerification consumes a verification token: the matching account
// becomes verified and the token is cleared so it can never validate again.
func (s *Service) ConfirmVerification(ctx context.Context, token string) error {
	user, err := s.users.FindToken(ctx, dao.TokenQuery{Field: dao.TokenFieldVerify, Value: token})
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("verification token", nil)
	}

	user.Status = true
	user.VerifyToken = nil
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventAccountVerified,
		UserID: user.ID.Hex(),
		Email:  user.Email,
	})
	return nil
}

// StartClosure opens the account closure window for the principal and sends
// the informational notice about the 30 day purge policy. It does not check
// or consume any expiration itself.
func (s *Service) StartClosure(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("user", map[string]any{"email": email})
	}

	windowEnd := time.Now().Add(s.closureWindow)
	user.ClosureExpiresAt = &windowEnd
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventClosureStarted,
		UserID:  user.ID.Hex(),
		Email:   user.Email,
		Payload: events.ClosureStartedPayload{WindowEndsAt: windowEnd},
	})
	return nil
}

// RequestPasswordReset issues a one-time reset token with a bounded lifetime
// and requests delivery of the reset link. A missing account reports the
// not-found kind with a 400 status; an unverified account is forbidden.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewDomainError("NOT_FOUND", "email not registered", http.StatusBadRequest, nil)
	}
	if !user.Status {
		return apperrors.NewForbidden("account not verified")
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(s.resetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expiresAt
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventPasswordResetRequested,
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Payload: events.PasswordResetRequestedPayload{
			ResetLink: fmt.Sprintf("%s/users/%s/recover-password/%s", s.frontendURL, user.ID.Hex(), token),
			ExpiresAt: expiresAt,
		},
	})
	return nil
}

// ResetPassword consumes a reset token. Validation order: uid existence
// against the full listing, token match and non-expiry, password
// confirmation match, then the same-password rejection, which compares
// against the stored hash and fails with a distinct kind.
func (s *Service) ResetPassword(ctx context.Context, uid, token, newPassword, confirmPassword string) error {
	if err := s.requireKnownUID(ctx, uid); err != nil {
		return err
	}

	now := time.Now()
	user, err := s.users.FindToken(ctx, dao.TokenQuery{
		Field:           dao.TokenFieldReset,
		Value:           token,
		NotExpiredAfter: &now,
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("reset token", nil)
	}

	if newPassword != confirmPassword {
		return apperrors.NewDomainError("NO_MATCH_PASSWORD", "passwords do not match", http.StatusBadRequest, nil)
	}
	if auth.ComparePassword(user.PasswordHash, newPassword) == nil {
		return apperrors.NewDomainError("SAME_PASSWORD", "new password matches the current password", http.StatusBadRequest, nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventPasswordResetCompleted,
		UserID: user.ID.Hex(),
		Email:  user.Email,
	})
	return nil
}

// PromoteToPremium upgrades a standard account to premium. Requires a
// verified principal; the target uid is validated against the full listing.
// Promoting an already premium account is a no-op success.
func (s *Service) PromoteToPremium(ctx context.Context, principal *domain.User, uid string) error {
	if !principal.Status {
		return apperrors.NewForbidden("account not verified")
	}
	if err := s.requireKnownUID(ctx, uid); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return apperrors.MapError(err)
	}

	oldRole := user.Role
	user.Role = domain.UserRolePremium
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventRolePromoted,
		UserID:  user.ID.Hex(),
		Email:   user.Email,
		Payload: events.RolePromotedPayload{OldRole: oldRole, NewRole: domain.UserRolePremium},
	})
	return nil
}

// SaveDocuments stores the three required document references for a user.
// All of dni, address and bank must be present; the original surface reports
// the missing-category failure with a 401.
func (s *Service) SaveDocuments(ctx context.Context, principal *domain.User, uid string, docs []domain.Document) (*domain.User, error) {
	if !principal.Status {
		return nil, apperrors.NewForbidden("account not verified")
	}

	present := map[string]bool{}
	for _, doc := range docs {
		present[doc.Name] = true
	}
	if !present[domain.DocumentDNI] || !present[domain.DocumentAddress] || !present[domain.DocumentBank] {
		return nil, apperrors.NewDomainError(
			"FAIL_UPLOAD",
			"dni, address and bank documents are required",
			http.StatusUnauthorized,
			nil,
		)
	}

	user, err := s.users.SaveDocuments(ctx, uid, docs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Name)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventDocumentsUploaded,
		UserID:  user.ID.Hex(),
		Email:   user.Email,
		Payload: events.DocumentsUploadedPayload{Names: names},
	})
	return user, nil
}

// ListUsers returns the projection of every account. Requires a verified
// principal. No pagination.
func (s *Service) ListUsers(ctx context.Context, principal *domain.User) ([]UserProjection, error) {
	if !principal.Status {
		return nil, apperrors.NewForbidden("account not verified")
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable("user store unavailable", err)
	}

	projections := make([]UserProjection, 0, len(users))
	for i := range users {
		projections = append(projections, projectUser(&users[i]))
	}
	return projections, nil
}

// requireKnownUID validates a uid against the full user listing, mirroring
// the listing-based existence check of the reset and promotion flows.
func (s *Service) requireKnownUID(ctx context.Context, uid string) error {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return apperrors.NewUpstreamUnavailable("user store unavailable", err)
	}
	for i := range users {
		if users[i].ID.Hex() == uid {
			return nil
		}
	}
	return apperrors.NewNotFound("user", map[string]any{"uid": uid})
}

func projectUser(user *domain.User) UserProjection {
	docs := user.Documents
	if docs == nil {
		docs = []domain.Document{}
	}
	return UserProjection{
		ID:        user.ID.Hex(),
		Name:      user.FirstName,
		Surname:   user.LastName,
		Email:     user.Email,
		Status:    user.Status,
		Role:      user.Role,
		Documents: docs,
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// IsNotFound reports whether err carries the not-found kind, regardless of
// the HTTP status it maps to.
func IsNotFound(err error) bool {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de.Code == "NOT_FOUND"
	}
	return errors.Is(err, mongo.ErrNoDocuments)
}

package account

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/dao"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// fakeUserRepo is an in-memory stand-in for the repository stack.
type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	findAllErr error
	saveErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	clone := *user
	f.users[user.ID.Hex()] = &clone
	return nil
}

func (f *fakeUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	if f.findAllErr != nil {
		return nil, f.findAllErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindToken(_ context.Context, query dao.TokenQuery) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		var stored *string
		switch query.Field {
		case dao.TokenFieldVerify:
			stored = u.VerifyToken
		case dao.TokenFieldReset:
			stored = u.ResetToken
		}
		if stored == nil || *stored != query.Value {
			continue
		}
		if query.NotExpiredAfter != nil && query.Field == dao.TokenFieldReset {
			if u.ResetTokenExpiresAt == nil || !u.ResetTokenExpiresAt.After(*query.NotExpiredAfter) {
				continue
			}
		}
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) Save(_ context.Context, user *domain.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	clone := *user
	f.users[user.ID.Hex()] = &clone
	return nil
}

func (f *fakeUserRepo) SaveDocuments(_ context.Context, id string, docs []domain.Document) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	u.Documents = docs
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) PurgeClosedAccounts(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, u := range f.users {
		if u.ClosureExpiresAt != nil && u.ClosureExpiresAt.Before(cutoff) {
			delete(f.users, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeUserRepo) stored(id string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(repo *fakeUserRepo, dispatcher events.Dispatcher) *Service {
	cfg := config.Config{}
	cfg.Auth.BcryptCost = 4
	cfg.Auth.ResetTokenTTL = time.Hour
	cfg.Auth.ClosureWindow = time.Hour
	cfg.App.FrontendURL = "http://localhost:5173"
	return NewService(cfg, Dependencies{
		UserRepo:     repo,
		Dispatcher:   dispatcher,
		TokenManager: auth.NewTokenManager("test-secret", 60),
	})
}

func registerVerified(t *testing.T, svc *Service, repo *fakeUserRepo, email string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "correct-horse",
	})
	require.NoError(t, err)

	stored := repo.stored(user.ID.Hex())
	stored.Status = true
	return repo.stored(user.ID.Hex())
}

func requireDomainError(t *testing.T, err error, code string, status int) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %T: %v", err, err)
	assert.Equal(t, code, de.Code)
	assert.Equal(t, status, de.HTTPStatus)
	return de
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	repo := newFakeUserRepo()
	dispatcher := &recordingDispatcher{}
	svc := newTestService(repo, dispatcher)

	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "a@x.com",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.False(t, user.Status)
	assert.Equal(t, domain.UserRoleStandard, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	require.NoError(t, auth.ComparePassword(user.PasswordHash, "correct-horse"))
	assert.Len(t, dispatcher.byType(events.EventUserRegistered), 1)

	_, err = svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "a@x.com",
		Password:  "other",
	})
	requireDomainError(t, err, "CONFLICT", 409)
}

func TestVerificationLifecycle(t *testing.T) {
	repo := newFakeUserRepo()
	dispatcher := &recordingDispatcher{}
	svc := newTestService(repo, dispatcher)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "a@x.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RequestVerification(ctx, "a@x.com"))

	stored := repo.stored(user.ID.Hex())
	require.NotNil(t, stored.VerifyToken)
	token := *stored.VerifyToken

	published := dispatcher.byType(events.EventVerificationRequested)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.VerificationRequestedPayload)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(payload.ActivationLink, "/users/verified-account/"+token))

	// wrong token always fails not-found
	requireDomainError(t, svc.ConfirmVerification(ctx, "no-such-token"), "NOT_FOUND", 404)

	// matching token consumes exactly once
	require.NoError(t, svc.ConfirmVerification(ctx, token))
	stored = repo.stored(user.ID.Hex())
	assert.True(t, stored.Status)
	assert.Nil(t, stored.VerifyToken)

	// replay of the consumed token fails not-found
	requireDomainError(t, svc.ConfirmVerification(ctx, token), "NOT_FOUND", 404)
}

func TestLoginStatusGate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &recordingDispatcher{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "a@x.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "a@x.com", "correct-horse")
	requireDomainError(t, err, "UNAUTHORIZED", 401)

	_, _, _, err = svc.Login(ctx, "a@x.com", "wrong-password")
	requireDomainError(t, err, "UNAUTHORIZED", 401)

	_, _, _, err = svc.Login(ctx, "nobody@x.com", "correct-horse")
	requireDomainError(t, err, "UNAUTHORIZED", 401)

	user := registerVerified(t, svc, repo, "b@x.com")
	logged, token, exp, err := svc.Login(ctx, user.Email, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.Email, logged.Email)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))
}

func TestLoginDoesNotClearClosureWindow(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &recordingDispatcher{})
	ctx := context.Background()

	user := registerVerified(t, svc, repo, "a@x.com")
	require.NoError(t, svc.StartClosure(ctx, user.Email))
	require.NotNil(t, repo.stored(user.ID.Hex()).ClosureExpiresAt)

	_, _, _, err := svc.Login(ctx, user.Email, "correct-horse")
	require.NoError(t, err)
	assert.NotNil(t, repo.stored(user.ID.Hex()).ClosureExpiresAt,
		"login leaves the closure window untouched")
}

func TestLogoutRequiresVerifiedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &recordingDispatcher{})

	unverified := &domain.User{Status: false}
	requireDomainError(t, svc.Logout(context.Background(), unverified, "", time.Time{}), "FORBIDDEN", 403)

	verified := &domain.User{Status: true}
	require.NoError(t, svc.Logout(context.Background(), verified, "", time.Time{}))
}

func TestStartClosureSetsWindowAndNotifies(t *testing.T) {
	repo := newFakeUserRepo()
	dispatcher := &recordingDispatcher{}
	svc := newTestService(repo, dispatcher)
	ctx := context.Background()

	user := registerVerified(t, svc, repo, "a@x.com")
	before := time.Now()
	require.NoError(t, svc.StartClosure(ctx, user.Email))

	stored := repo.stored(user.ID.Hex())
	require.NotNil(t, stored.ClosureExpiresAt)
	assert.True(t, stored.ClosureExpiresAt.After(before.Add(59*time.Minute)))

	require.Len(t, dispatcher.byType(events.EventClosureStarted), 1)
}

func TestRequestPasswordReset(t *testing.T) {
	repo := newFakeUserRepo()
	dispatcher := &recordingDispatcher{}
	svc := newTestService(repo, dispatcher)
	ctx := context.Background()

	// unknown email reports the not-found kind with a 400 status
	err := svc.RequestPasswordReset(ctx, "nobody@x.com")
	requireDomainError(t, err, "NOT_FOUND", 400)

	// unverified account is forbidden, not not-found
	_, err = svc.Register(ctx, RegisterInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "a@x.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	requireDomainError(t, svc.RequestPasswordReset(ctx, "a@x.com"), "FORBIDDEN", 403)

	user := registerVerified(t, svc, repo, "b@x.com")
	require.NoError(t, svc.RequestPasswordReset(ctx, user.Email))

	stored := repo.stored(user.ID.Hex())
	require.NotNil(t, stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiresAt)
	assert.True(t, stored.ResetTokenExpiresAt.After(time.Now()))

	published := dispatcher.byType(events.EventPasswordResetRequested)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.PasswordResetRequestedPayload)
	require.True(t, ok)
	assert.Contains(t, payload.ResetLink, user.ID.Hex())
	assert.True(t, strings.HasSuffix(payload.ResetLink, *stored.ResetToken))
}

func TestResetPasswordValidationOrder(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &recordingDispatcher{})
	ctx := context.Background()

	user := registerVerified(t, svc, repo, "a@x.com")
	require.NoError(t, svc.RequestPasswordReset(ctx, user.Email))
	token := *repo.stored(user.ID.Hex()).ResetToken

	// unknown uid fails before the token is even considered
	err := svc.ResetPassword(ctx, primitive.NewObjectID().Hex(), token, "new-password", "new-password")
	requireDomainError(t, err, "NOT_FOUND", 404)

	// wrong token fails before password comparison
	err = svc.ResetPassword(ctx, user.ID.Hex(), "bogus-token", "one", "two")
	requireDomainError(t, err, "NOT_FOUND", 404)

	// confirmation mismatch is detected after token validation
	err = svc.ResetPassword(ctx, user.ID.Hex(), token, "new-password", "different")
	requireDomainError(t, err, "NO_MATCH_PASSWORD", 400)

	// resetting to the current password fails with a distinct kind
	err = svc.ResetPassword(ctx, user.ID.Hex(), token, "correct-horse", "correct-horse")
	requireDomainError(t, err, "SAME_PASSWORD", 400)

	// the failed attempts above leave the token valid; success consumes it
	require.NoError(t, svc.ResetPassword(ctx, user.ID.Hex(), token, "new-password", "new-password"))
	stored := repo.stored(user.ID.Hex())
	assert.Nil(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiresAt)
	require.NoError(t, auth.ComparePassword(stored.PasswordHash, "new-password"))

	// consumed token never validates again
	err = svc.ResetPassword(ctx, user.ID.Hex(), token, "another-one", "another-one")
	requireDomainError(t, err, "NOT_FOUND", 404)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &recordingDispatcher{})
	ctx := context.Background()

	user := registerVerified(t, svc, repo, "a@x.com")
	require.NoError(t, svc.RequestPasswordReset(ctx, user.Email))

	stored := repo.stored(user.ID.Hex())
	token := *stored.ResetToken
	expired := time.Now().Add(-time.Minute)
	stored.ResetTokenExpiresAt = &expired

	err := svc.ResetPassword(ctx, user.ID.Hex(), token, "new-password", "new-password")
	requireDomainError(t, err, "NOT_FOUND", 404)
}

func TestPromoteToPremium(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &recordingDispatcher{})
	ctx := context.Background()

	admin := registerVerified(t, svc, repo, "admin@x.com")
	target := registerVerified(t, svc, repo, "a@x.com")

	// unverified principal is forbidden
	requireDomainError(t, svc.PromoteToPremium(ctx, &domain.User{Status: false}, target.ID.Hex()), "FORBIDDEN", 403)

	// uid absent from the full listing fails not-found
	err := svc.PromoteToPremium(ctx, admin, primitive.NewObjectID().Hex())
	requireDomainError(t, err, "NOT_FOUND", 404)

	require.NoError(t, svc.PromoteToPremium(ctx, admin, target.ID.Hex()))
	assert.Equal(t, domain.UserRolePremium, repo.stored(target.ID.Hex()).Role)

	// idempotent: promoting twice leaves role premium, no error
	require.NoError(t, svc.PromoteToPremium(ctx, admin, target.ID.Hex()))
	assert.Equal(t, domain.UserRolePremium, repo.stored(target.ID.Hex()).Role)
}

func TestSaveDocuments(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &recordingDispatcher{})
	ctx := context.Background()

	user := registerVerified(t, svc, repo, "a@x.com")

	_, err := svc.SaveDocuments(ctx, &domain.User{Status: false}, user.ID.Hex(), nil)
	requireDomainError(t, err, "FORBIDDEN", 403)

	for _, missing := range []string{domain.DocumentDNI, domain.DocumentAddress, domain.DocumentBank} {
		docs := []domain.Document{}
		for _, name := range []string{domain.DocumentDNI, domain.DocumentAddress, domain.DocumentBank} {
			if name == missing {
				continue
			}
			docs = append(docs, domain.Document{Name: name, Reference: "/tmp/" + name})
		}
		_, err := svc.SaveDocuments(ctx, user, user.ID.Hex(), docs)
		requireDomainError(t, err, "FAIL_UPLOAD", 401)
	}

	docs := []domain.Document{
		{Name: domain.DocumentDNI, Reference: "/tmp/dni.pdf"},
		{Name: domain.DocumentAddress, Reference: "/tmp/address.pdf"},
		{Name: domain.DocumentBank, Reference: "/tmp/bank.pdf"},
	}
	updated, err := svc.SaveDocuments(ctx, user, user.ID.Hex(), docs)
	require.NoError(t, err)
	require.Len(t, updated.Documents, 3)
	assert.True(t, updated.HasDocument(domain.DocumentDNI))
	assert.True(t, updated.HasDocument(domain.DocumentAddress))
	assert.True(t, updated.HasDocument(domain.DocumentBank))
}

func TestListUsers(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &recordingDispatcher{})
	ctx := context.Background()

	user := registerVerified(t, svc, repo, "a@x.com")
	registerVerified(t, svc, repo, "b@x.com")

	_, err := svc.ListUsers(ctx, &domain.User{Status: false})
	requireDomainError(t, err, "FORBIDDEN", 403)

	projections, err := svc.ListUsers(ctx, user)
	require.NoError(t, err)
	assert.Len(t, projections, 2)
	for _, p := range projections {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Ada", p.Name)
		assert.Equal(t, "Lovelace", p.Surname)
		assert.NotNil(t, p.Documents)
	}

	// a failing listing surfaces as an upstream dependency error
	repo.findAllErr = errors.New("connection refused")
	_, err = svc.ListUsers(ctx, user)
	requireDomainError(t, err, "UPSTREAM_UNAVAILABLE", 502)
}

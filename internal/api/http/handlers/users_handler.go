package handlers

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/account"
	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/storage"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// UsersHandler exposes the account lifecycle endpoints.
type UsersHandler struct {
	accounts   *account.Service
	documents  storage.DocumentStore
	cookieName string
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accounts *account.Service, documents storage.DocumentStore, cookieName string) *UsersHandler {
	return &UsersHandler{accounts: accounts, documents: documents, cookieName: cookieName}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return apperrors.NewValidationError("first_name, last_name, email, password required", nil)
	}

	user, err := h.accounts.Register(c.UserContext(), account.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":  "Created user",
		"payload": dto.NewUserResponse(user),
	})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"status":  "Login",
		"payload": dto.NewUserResponse(user),
	})
}

// Logout handles POST /api/users/logout. The session credential is revoked
// and the cookie expired immediately.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var tokenExpiry time.Time
	if principal.Claims != nil && principal.Claims.ExpiresAt != nil {
		tokenExpiry = principal.Claims.ExpiresAt.Time
	}
	if err := h.accounts.Logout(c.UserContext(), principal.User, principal.TokenID, tokenExpiry); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.SendStatus(http.StatusNoContent)
}

// RequestVerification handles GET /api/users/verify-account.
func (h *UsersHandler) RequestVerification(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.accounts.RequestVerification(c.UserContext(), principal.User.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Verification email sent"})
}

// ConfirmVerification handles GET /api/users/verified-account/:token.
func (h *UsersHandler) ConfirmVerification(c *fiber.Ctx) error {
	if err := h.accounts.ConfirmVerification(c.UserContext(), c.Params("token")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Account verified successfully"})
}

// StartClosure handles POST /api/users/account-closure.
func (h *UsersHandler) StartClosure(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.accounts.StartClosure(c.UserContext(), principal.User.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Closure notice sent"})
}

// RequestPasswordReset handles POST /api/users/restore-password.
func (h *UsersHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.RestorePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.accounts.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "Password recovery message sent"})
}

// ResetPassword handles PUT /api/users/:uid/reset-password/:token.
func (h *UsersHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	err := h.accounts.ResetPassword(c.UserContext(), c.Params("uid"), c.Params("token"), req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return c.Status(http.StatusResetContent).JSON(fiber.Map{"message": "Password updated"})
}

// PromoteToPremium handles PUT /api/users/premium/:uid.
func (h *UsersHandler) PromoteToPremium(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.accounts.PromoteToPremium(c.UserContext(), principal.User, c.Params("uid")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "User role updated successfully",
	})
}

// SaveDocuments handles POST /api/users/:uid/documents as a multipart upload
// with one file per category.
func (h *UsersHandler) SaveDocuments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	uid := c.Params("uid")

	files := map[string]*multipart.FileHeader{}
	for _, category := range []string{domain.DocumentDNI, domain.DocumentAddress, domain.DocumentBank} {
		file, err := c.FormFile(category)
		if err != nil {
			continue
		}
		files[category] = file
	}

	docs := make([]domain.Document, 0, len(files))
	if len(files) == 3 {
		for category, file := range files {
			reference, err := h.documents.Store(c, uid, category, file)
			if err != nil {
				return apperrors.NewInternalError(err)
			}
			docs = append(docs, domain.Document{Name: category, Reference: reference})
		}
	} else {
		// Incomplete upload: let the lifecycle controller report the
		// canonical failure without writing anything to disk.
		for category := range files {
			docs = append(docs, domain.Document{Name: category})
		}
	}

	user, err := h.accounts.SaveDocuments(c.UserContext(), principal.User, uid, docs)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":  "uploaded documents",
		"payload": dto.NewUserResponse(user),
	})
}

// ListUsers handles GET /api/users/current.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	users, err := h.accounts.ListUsers(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "All users",
		"payload": users,
	})
}

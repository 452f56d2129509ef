package handlers

import (
	"errors"

	"ember-portal/internal/core/services"
	"ember-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OAuthHandler handles Google / Discord sign-in endpoints
type OAuthHandler struct {
	oauthService *services.OAuthService
	authHandler  *AuthHandler
}

// NewOAuthHandler creates a new oauth handler
func NewOAuthHandler(oauthService *services.OAuthService, authHandler *AuthHandler) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		authHandler:  authHandler,
	}
}

// Begin redirects to the provider's consent page
// @Summary Start OAuth sign-in
// @Description Redirects to the Google or Discord consent page
// @Tags OAuth
// @Produce json
// @Param provider path string true "Provider (google or discord)"
// @Success 302
// @Failure 400 {object} response.Response
// @Router /auth/oauth/{provider} [get]
func (h *OAuthHandler) Begin(c *fiber.Ctx) error {
	provider := c.Params("provider")

	url, err := h.oauthService.BeginLogin(c.Context(), provider)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownProvider):
			return response.BadRequest(c, "Unknown provider")
		case errors.Is(err, services.ErrProviderDisabled):
			return response.BadRequest(c, "Provider is not configured")
		default:
			return response.InternalServerError(c, "Failed to start sign-in")
		}
	}

	return c.Redirect(url, fiber.StatusFound)
}

// Callback completes the OAuth sign-in
// @Summary OAuth callback
// @Description Exchanges the provider code and signs the user in
// @Tags OAuth
// @Produce json
// @Param provider path string true "Provider (google or discord)"
// @Param state query string true "State token"
// @Param code query string true "Authorization code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/oauth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	provider := c.Params("provider")
	state := c.Query("state")
	code := c.Query("code")

	if state == "" || code == "" {
		return response.BadRequest(c, "Missing state or code")
	}

	result, err := h.oauthService.CompleteLogin(c.Context(), provider, state, code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownProvider):
			return response.BadRequest(c, "Unknown provider")
		case errors.Is(err, services.ErrInvalidState):
			return response.Unauthorized(c, "Sign-in session expired, please try again")
		case errors.Is(err, services.ErrNoProviderEmail):
			return response.BadRequest(c, "Provider account has no email address")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "User account is inactive")
		case errors.Is(err, services.ErrUserBanned):
			return response.Forbidden(c, "User account is banned")
		default:
			return response.InternalServerError(c, "Failed to complete sign-in")
		}
	}

	h.authHandler.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// Link attaches a provider account to the signed-in user
// @Summary Link external account
// @Description Completes linking a provider account to the current user
// @Tags OAuth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param provider path string true "Provider (google or discord)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/oauth/{provider}/link [post]
func (h *OAuthHandler) Link(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	provider := c.Params("provider")

	var req struct {
		State string `json:"state"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Without state and code we start the flow and hand back the URL
	if req.State == "" && req.Code == "" {
		url, err := h.oauthService.BeginLink(c.Context(), provider)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnknownProvider):
				return response.BadRequest(c, "Unknown provider")
			case errors.Is(err, services.ErrProviderDisabled):
				return response.BadRequest(c, "Provider is not configured")
			default:
				return response.InternalServerError(c, "Failed to start linking")
			}
		}
		return response.Success(c, "Consent URL created", fiber.Map{"url": url})
	}

	if err := h.oauthService.CompleteLink(c.Context(), userID, provider, req.State, req.Code); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownProvider):
			return response.BadRequest(c, "Unknown provider")
		case errors.Is(err, services.ErrInvalidState):
			return response.Unauthorized(c, "Linking session expired, please try again")
		case errors.Is(err, services.ErrIdentityTaken):
			return response.Conflict(c, "External account already linked to another user")
		default:
			return response.InternalServerError(c, "Failed to link account")
		}
	}

	return response.Success(c, "Account linked successfully", nil)
}

// Unlink removes a provider link
// @Summary Unlink external account
// @Description Removes the provider link from the current user
// @Tags OAuth
// @Produce json
// @Security BearerAuth
// @Param provider path string true "Provider (google or discord)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/oauth/{provider} [delete]
func (h *OAuthHandler) Unlink(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	provider := c.Params("provider")

	if err := h.oauthService.Unlink(c.Context(), userID, provider); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownProvider):
			return response.BadRequest(c, "Unknown provider")
		case errors.Is(err, services.ErrIdentityNotLinked):
			return response.NotFound(c, "Account is not linked")
		case errors.Is(err, services.ErrLastLoginMethod):
			return response.Conflict(c, "Cannot unlink the only login method")
		default:
			return response.InternalServerError(c, "Failed to unlink account")
		}
	}

	return response.Success(c, "Account unlinked successfully", nil)
}

// Linked lists the current user's linked providers
// @Summary List linked accounts
// @Description Lists the provider accounts linked to the current user
// @Tags OAuth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/oauth/linked [get]
func (h *OAuthHandler) Linked(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	identities, err := h.oauthService.ListLinked(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list linked accounts")
	}

	return response.Success(c, "Linked accounts retrieved", fiber.Map{
		"identities": identities,
	})
}

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"inspections-server/internal/auth"
	"inspections-server/internal/auth/providers"
	"inspections-server/internal/shared/config"
	"inspections-server/internal/shared/cookies"
	"inspections-server/internal/shared/errors"
	"inspections-server/internal/shared/response"
	"inspections-server/internal/user"
)

// OAuthHandler drives the login flow for one OAuth provider: redirect out,
// validate the callback, find or create the user, set the session cookie.
type OAuthHandler struct {
	provider     providers.OAuthProvider
	userService  *user.Service
	authService  *auth.Service
	isConfigured bool
}

func NewOAuthHandler(provider providers.OAuthProvider, userService *user.Service, authService *auth.Service, isConfigured bool) *OAuthHandler {
	return &OAuthHandler{
		provider:     provider,
		userService:  userService,
		authService:  authService,
		isConfigured: isConfigured,
	}
}

func (h *OAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	logger := slog.With("handler", name+"_oauth_init")

	if !h.isConfigured {
		response.Error(w, r, logger, errors.External(fmt.Sprintf("%s OAuth is not properly configured", name)))
		return
	}

	state, err := auth.GenerateOAuthState(name, r.UserAgent())
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	authURL := h.provider.GetAuthURL(state)
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	logger := slog.With(
		"handler", name+"_oauth_callback",
		"user_agent", r.UserAgent(),
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam != "" {
		logger.Warn("OAuth authorization denied",
			"provider", name,
			"oauth_error", errorParam,
			"error_description", r.URL.Query().Get("error_description"))
		redirectWithError(w, r, "oauth_denied", "Authorization was denied")
		return
	}

	if code == "" {
		logger.Error("OAuth callback missing authorization code", "provider", name)
		redirectWithError(w, r, "oauth_error", "Missing authorization code")
		return
	}

	if err := auth.ValidateOAuthState(state, name, r.UserAgent()); err != nil {
		logger.Error("OAuth state validation failed", "error", err, "provider", name)
		redirectWithError(w, r, "oauth_error", "Invalid request state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err, "provider", name)
		redirectWithError(w, r, "oauth_error", "Failed to exchange authorization code")
		return
	}

	userInfo, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info", "error", err, "provider", name)
		redirectWithError(w, r, "oauth_error", "Failed to retrieve user information")
		return
	}

	userLogger := logger.With("user_email", userInfo.Email, "provider_user_id", userInfo.ID)

	existingUserID, err := h.authService.FindUserByAuthProvider(ctx, name, userInfo.ID)
	if err != nil && errors.GetType(err) != errors.ErrorTypeNotFound {
		userLogger.Error("Database error checking auth provider", "error", err)
		redirectWithError(w, r, "database_error", "Failed to authenticate user")
		return
	}

	var u *user.User
	if existingUserID > 0 {
		u, err = h.userService.GetUserByID(ctx, existingUserID)
		if err != nil {
			userLogger.Error("Failed to get existing user", "error", err)
			redirectWithError(w, r, "database_error", "Failed to get user account")
			return
		}
	} else {
		u, err = h.userService.FindOrCreateUserByOAuth(ctx, name, userInfo.ID, userInfo.Email, userInfo.Name, &userInfo.AvatarURL)
		if err != nil {
			userLogger.Error("Failed to create user", "error", err)
			redirectWithError(w, r, "database_error", "Failed to create user account")
			return
		}

		if err := h.authService.CreateAuthProvider(ctx, u.ID, name, userInfo.ID, userInfo.Email); err != nil {
			userLogger.Error("Failed to create auth provider link", "error", err)
			redirectWithError(w, r, "database_error", "Failed to link account")
			return
		}
	}

	jwtToken, err := auth.GenerateJWT(u.ID, u.Email, u.DisplayName)
	if err != nil {
		userLogger.Error("Failed to generate JWT token", "error", err, "user_id", u.ID)
		redirectWithError(w, r, "auth_error", "Failed to create authentication token")
		return
	}

	cookies.SetAuthCookie(w, jwtToken)

	userLogger.Info("OAuth authentication successful", "provider", name, "user_id", u.ID)

	cfg := config.GlobalConfig
	successURL := fmt.Sprintf("%s/auth/callback?success=true", cfg.Frontend.URL)
	http.Redirect(w, r, successURL, http.StatusTemporaryRedirect)
}

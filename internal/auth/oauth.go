package auth

import (
	"log/slog"

	"inspections-server/internal/auth/providers"
	"inspections-server/internal/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type OAuthConfig struct {
	GoogleConfig     *oauth2.Config
	GoogleProvider   *providers.GoogleProvider
	GoogleConfigured bool
}

func InitOAuth() *OAuthConfig {
	cfg := config.GlobalConfig
	logger := slog.With("component", "oauth", "operation", "init")
	logger.Debug("Initializing OAuth configuration")

	googleConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
		Scopes:       cfg.OAuth.Google.Scopes,
		Endpoint:     google.Endpoint,
	}

	googleConfigured := cfg.GoogleOAuthConfigured()

	logger.Info("OAuth configuration completed",
		"google_configured", googleConfigured,
		"google_redirect", googleConfig.RedirectURL,
	)

	if !googleConfigured {
		logger.Warn("Google OAuth not configured - missing client credentials")
	}

	return &OAuthConfig{
		GoogleConfig:     googleConfig,
		GoogleProvider:   providers.NewGoogleProvider(googleConfig),
		GoogleConfigured: googleConfigured,
	}
}

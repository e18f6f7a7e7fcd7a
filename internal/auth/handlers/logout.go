package handlers

import (
	"log/slog"
	"net/http"

	"inspections-server/internal/shared/cookies"
	"inspections-server/internal/shared/response"
)

type LogoutHandler struct{}

func NewLogoutHandler() *LogoutHandler {
	return &LogoutHandler{}
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "logout", "remote_addr", r.RemoteAddr)

	cookies.ClearAuthCookie(w)

	logger.Info("User logged out")
	response.Success(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

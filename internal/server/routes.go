package server

import (
	"log/slog"
	"net/http"

	"inspections-server/internal/auth"
	authHandlers "inspections-server/internal/auth/handlers"
	"inspections-server/internal/auth/providers"
	"inspections-server/internal/inspection"
	inspectionHandlers "inspections-server/internal/inspection/handlers"
	"inspections-server/internal/middleware"
	serverHandlers "inspections-server/internal/server/handlers"
	"inspections-server/internal/shared/blob"
	appconfig "inspections-server/internal/shared/config"
	"inspections-server/internal/shared/database"
	"inspections-server/internal/user"
	userHandlers "inspections-server/internal/user/handlers"
)

type Routes struct {
	db                *database.DB
	inspectionService *inspection.Service
	photoStore        blob.Store
	userService       *user.Service
	authService       *auth.Service
	googleProvider    providers.OAuthProvider
	logger            *slog.Logger
}

// NewRoutes wires the HTTP surface. db, userService, authService and
// googleProvider are nil when the server runs on the local single-blob
// backend, which has no login.
func NewRoutes(
	db *database.DB,
	inspectionService *inspection.Service,
	photoStore blob.Store,
	userService *user.Service,
	authService *auth.Service,
	googleProvider providers.OAuthProvider,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:                db,
		inspectionService: inspectionService,
		photoStore:        photoStore,
		userService:       userService,
		authService:       authService,
		googleProvider:    googleProvider,
		logger:            logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	backend := appconfig.GlobalConfig.Storage.Backend

	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes", "backend", backend)

	mux := http.NewServeMux()

	// The session guard: JWT cookies against the hosted backend, a fixed
	// local identity when running on the local blob.
	guard := middleware.JWTMiddleware
	if backend == appconfig.StorageBackendLocalBlob {
		guard = middleware.LocalUserMiddleware
	}

	healthHandler := serverHandlers.NewHealthHandler(r.db, backend)
	projectHandler := inspectionHandlers.NewProjectHandler(r.inspectionService)
	levelHandler := inspectionHandlers.NewLevelHandler(r.inspectionService)
	spaceHandler := inspectionHandlers.NewSpaceHandler(r.inspectionService)
	observationHandler := inspectionHandlers.NewObservationHandler(r.inspectionService)
	exportHandler := inspectionHandlers.NewExportHandler(r.inspectionService)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)

	// Protected endpoints (authenticated users)
	mux.Handle("/api/projects", guard(http.HandlerFunc(projectHandler.HandleProjects)))
	mux.Handle("/api/projects/{projectID}", guard(http.HandlerFunc(projectHandler.HandleProject)))
	mux.Handle("/api/projects/{projectID}/export", guard(http.HandlerFunc(exportHandler.HandleExport)))
	mux.Handle("/api/projects/{projectID}/levels", guard(http.HandlerFunc(levelHandler.HandleLevels)))
	mux.Handle("/api/projects/{projectID}/levels/{levelID}", guard(http.HandlerFunc(levelHandler.HandleLevel)))
	mux.Handle("/api/projects/{projectID}/levels/{levelID}/spaces", guard(http.HandlerFunc(spaceHandler.HandleSpaces)))
	mux.Handle("/api/projects/{projectID}/spaces/{spaceID}", guard(http.HandlerFunc(spaceHandler.HandleSpace)))
	mux.Handle("/api/projects/{projectID}/levels/{levelID}/spaces/{spaceID}/observations", guard(http.HandlerFunc(observationHandler.HandleObservations)))
	mux.Handle("/api/projects/{projectID}/observations/{observationID}", guard(http.HandlerFunc(observationHandler.HandleObservation)))
	mux.Handle("/api/users/me", guard(userHandlers.NewMeHandler()))

	// The filesystem and memory drivers serve their objects through the API;
	// the S3 driver hands out bucket URLs that never touch this server.
	if r.photoStore != nil && r.photoStore.Driver() != blob.DriverS3 {
		photoHandler := inspectionHandlers.NewPhotoHandler(r.photoStore)
		mux.Handle("/photos/{key...}", guard(http.HandlerFunc(photoHandler.HandlePhoto)))
	}

	// OAuth endpoints need the user database.
	if backend == appconfig.StorageBackendPostgres {
		googleAuthHandler := authHandlers.NewOAuthHandler(
			r.googleProvider,
			r.userService,
			r.authService,
			appconfig.GlobalConfig.GoogleOAuthConfigured(),
		)
		mux.HandleFunc("/auth/google", googleAuthHandler.HandleAuth)
		mux.HandleFunc("/auth/google/callback", googleAuthHandler.HandleCallback)
		mux.Handle("/auth/logout", authHandlers.NewLogoutHandler())
	}

	logger.Info("Routes configured successfully",
		"backend", backend,
		"public_endpoints", []string{"/api/server/health"},
		"protected_endpoints", []string{"/api/projects", "/api/users/me"},
	)

	return mux
}

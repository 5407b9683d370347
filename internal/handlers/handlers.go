package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sortify/internal/config"
	"sortify/internal/middleware"
	"sortify/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	projectService *service.ProjectService,
	membershipService *service.MembershipService,
	fileService *service.FileService,
	invitationService *service.InvitationService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	projectHandler := NewProjectHandler(projectService, logger)
	fileHandler := NewFileHandler(fileService, logger, config)
	memberHandler := NewMemberHandler(membershipService, invitationService, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Get("/api/user", userHandler.Me)
	r.Post("/api/user/update", userHandler.Update)

	// Project routes
	r.Post("/api/projects", projectHandler.Create)
	r.Get("/api/projects", projectHandler.List)
	r.Get("/api/projects/{projectID}", projectHandler.Get)
	r.Delete("/api/projects/{projectID}", projectHandler.Delete)

	// Files/versions routes
	r.Get("/api/projects/{projectID}/files", fileHandler.List)
	r.Post("/api/projects/{projectID}/upload", fileHandler.Upload)
	r.Get("/api/files/{fileID}/versions", fileHandler.Versions)
	r.Post("/api/versions/{versionID}/download", fileHandler.Download)

	// Members/invitations routes
	r.Get("/api/projects/{projectID}/members", memberHandler.List)
	r.Post("/api/projects/{projectID}/invite", memberHandler.Invite)
	r.Post("/api/invitations/accept", memberHandler.Accept)
	r.Post("/api/projects/{projectID}/change-role", memberHandler.ChangeRole)
	r.Post("/api/projects/{projectID}/remove-user", memberHandler.Remove)

	return &Handler{Router: r}
}

// statusFromError сопоставляет типизированные ошибки ядра HTTP-статусам.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAlreadyMember), errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFromError(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"message": msg, "status": "error"})
}

// currentUser достаёт доверенный идентификатор пользователя; без него — 401.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return uid, true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

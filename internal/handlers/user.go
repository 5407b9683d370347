package handlers

import (
	"encoding/json"
	"net/http"

	"sortify/internal/config"
	"sortify/internal/middleware"
	"sortify/internal/model"
	"sortify/internal/service"

	"go.uber.org/zap"
)

// UserHandler обрабатывает регистрацию, вход и профиль.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewUserHandler создаёт хендлер user
func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Nickname string `json:"nickname"`
	Mobile   string `json:"mobile,omitempty"`
	Job      string `json:"job,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Handle     string `json:"handle"`
	Mobile     string `json:"mobile,omitempty"`
	Job        string `json:"job,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

func toUserDTO(u *model.User) userDTO {
	return userDTO{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Handle:     u.Handle(),
		Mobile:     u.Mobile,
		Job:        u.Job,
		ProfilePic: u.ProfilePic,
	}
}

// Register — регистрация новой учётной записи, сразу со входом.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Register: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.UserService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Nickname: req.Nickname,
		Mobile:   req.Mobile,
		Job:      req.Job,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := middleware.SetLoginCookie(w, u.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Register: failed to set login cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// Login — вход по email/паролю, ставит сессионную cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := middleware.SetLoginCookie(w, u.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: failed to set login cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// Me — профиль текущего пользователя.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	u, err := h.UserService.Get(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// Update — правка профиля владельцем.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		FullName   string `json:"full_name"`
		Mobile     string `json:"mobile"`
		Job        string `json:"job"`
		ProfilePic string `json:"profile_pic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.UserService.UpdateProfile(r.Context(), uid, service.UpdateProfileInput{
		FullName:   req.FullName,
		Mobile:     req.Mobile,
		Job:        req.Job,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

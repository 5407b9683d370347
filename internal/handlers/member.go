package handlers

import (
	"encoding/json"
	"net/http"

	"sortify/internal/model"
	"sortify/internal/service"

	"go.uber.org/zap"
)

// MemberHandler обрабатывает участников и приглашения.
type MemberHandler struct {
	MembershipService *service.MembershipService
	InvitationService *service.InvitationService
	Logger            *zap.SugaredLogger
}

// NewMemberHandler создаёт хендлер members
func NewMemberHandler(ms *service.MembershipService, is *service.InvitationService, logger *zap.SugaredLogger) *MemberHandler {
	return &MemberHandler{MembershipService: ms, InvitationService: is, Logger: logger}
}

type memberDTO struct {
	UserID     int64  `json:"user_id"`
	FullName   string `json:"full_name"`
	Handle     string `json:"handle"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Role       string `json:"role"`
}

// inviteOutcomeDTO — исход одного адреса; форматирование сводного сообщения
// остаётся за презентационным слоем.
type inviteOutcomeDTO struct {
	Email   string `json:"email"`
	Status  string `json:"status"` // invited | error
	Message string `json:"message,omitempty"`
}

// List — участники проекта в контрактном порядке плюс роль запрашивающего.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	members, ownRole, err := h.MembershipService.Members(r.Context(), projectID, uid)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberDTO{
			UserID:     m.UserID,
			FullName:   m.FullName,
			Handle:     m.Handle,
			Email:      m.Email,
			ProfilePic: m.ProfilePic,
			Role:       string(m.Role),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"members": out,
		"role":    string(ownRole),
	})
}

// Invite — пакетное приглашение: адреса обрабатываются независимо, на каждый
// возвращается собственный исход.
func (h *MemberHandler) Invite(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req struct {
		Emails []string `json:"emails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Emails) == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	outcomes := h.InvitationService.InviteMany(r.Context(), projectID, uid, req.Emails)

	out := make([]inviteOutcomeDTO, 0, len(outcomes))
	for _, o := range outcomes {
		dto := inviteOutcomeDTO{Email: o.Email, Status: "invited"}
		if o.Err != nil {
			dto.Status = "error"
			dto.Message = o.Err.Error()
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": out})
}

// Accept — принятие приглашения по токену; создаёт членство reader.
func (h *MemberHandler) Accept(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	m, err := h.InvitationService.Accept(r.Context(), req.Token, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"project_id": m.ProjectID,
		"role":       string(m.Role),
	})
}

// ChangeRole — смена роли участника актором.
func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID int64  `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.MembershipService.ChangeRole(r.Context(), projectID, uid, req.UserID, model.Role(req.Role)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Remove — удаление участника. Вариант операции (уход или удаление другого)
// разрешается здесь, на границе, и дальше не переинтерпретируется.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	kind := service.RemoveOther
	if req.UserID == uid {
		kind = service.Leave
	}
	res, err := h.MembershipService.Remove(r.Context(), projectID, uid, req.UserID, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	// left=true подсказывает фронту увести пользователя со страниц проекта
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "left": res.Left})
}

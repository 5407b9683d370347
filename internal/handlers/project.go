package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"sortify/internal/service"

	"go.uber.org/zap"
)

// ProjectHandler обрабатывает проекты.
type ProjectHandler struct {
	ProjectService *service.ProjectService
	Logger         *zap.SugaredLogger
}

// NewProjectHandler создаёт хендлер projects
func NewProjectHandler(projectService *service.ProjectService, logger *zap.SugaredLogger) *ProjectHandler {
	return &ProjectHandler{ProjectService: projectService, Logger: logger}
}

type projectDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Role        string `json:"role,omitempty"`
}

type projectOverviewDTO struct {
	projectDTO
	CreatorName    string `json:"creator_name,omitempty"`
	CreatorPic     string `json:"creator_profile_pic,omitempty"`
	UpToDate       bool   `json:"up_to_date"`
	LastModifiedBy string `json:"last_modified_by,omitempty"`
	LastModifiedAt string `json:"last_modified_at"`
}

// Create — новый проект, создатель становится owner.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	p, err := h.ProjectService.Create(r.Context(), uid, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
		Role:        "owner",
	})
}

// List — сводка «мои проекты»: несвежие первыми.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}

	overviews, err := h.ProjectService.ListForUser(r.Context(), uid)
	if err != nil {
		h.Logger.Errorw("List projects: service error", "user_id", uid, "error", err)
		writeError(w, err)
		return
	}

	out := make([]projectOverviewDTO, 0, len(overviews))
	for _, ov := range overviews {
		out = append(out, projectOverviewDTO{
			projectDTO: projectDTO{
				ID:          ov.Project.ID,
				Name:        ov.Project.Name,
				Description: ov.Project.Description,
				CreatedAt:   ov.Project.CreatedAt.UTC().Format(time.RFC3339),
				UpdatedAt:   ov.Project.UpdatedAt.UTC().Format(time.RFC3339),
				Role:        string(ov.Role),
			},
			CreatorName:    ov.CreatorName,
			CreatorPic:     ov.CreatorPic,
			UpToDate:       ov.UpToDate,
			LastModifiedBy: ov.LastModifiedBy,
			LastModifiedAt: ov.LastModifiedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Get — метаданные проекта и роль запрашивающего.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	p, role, err := h.ProjectService.Get(r.Context(), projectID, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
		Role:        string(role),
	})
}

// Delete — удаление проекта владельцем, с каскадом.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	if err := h.ProjectService.Delete(r.Context(), projectID, uid); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

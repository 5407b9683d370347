package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"sortify/internal/config"
	"sortify/internal/service"

	"go.uber.org/zap"
)

// FileHandler обрабатывает файлы, версии и скачивания.
type FileHandler struct {
	FileService *service.FileService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewFileHandler создаёт хендлер files
func NewFileHandler(fileService *service.FileService, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{FileService: fileService, Logger: logger, Config: cfg}
}

type fileSummaryDTO struct {
	FileID        int64  `json:"file_id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	VersionID     int64  `json:"version_id"`
	VersionNumber int    `json:"version_number"`
	SizeBytes     int64  `json:"size_bytes"`
	UploadedAt    string `json:"uploaded_at"`
	UploadedBy    string `json:"uploaded_by,omitempty"`
	HasLatest     bool   `json:"has_latest"`
}

type versionDTO struct {
	ID            int64  `json:"id"`
	VersionNumber int    `json:"version_number"`
	SizeBytes     int64  `json:"size_bytes"`
	Comment       string `json:"comment,omitempty"`
	UploadedAt    string `json:"uploaded_at"`
	UploadedBy    string `json:"uploaded_by,omitempty"`
	IsCurrent     bool   `json:"is_current"`
}

// List — файлы проекта, недавно изменённые первыми.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	files, err := h.FileService.ListFiles(r.Context(), projectID, uid)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]fileSummaryDTO, 0, len(files))
	for _, f := range files {
		dto := fileSummaryDTO{
			FileID:        f.File.ID,
			Title:         f.File.Title,
			Description:   f.File.Description,
			VersionID:     f.Current.ID,
			VersionNumber: f.Current.VersionNumber,
			SizeBytes:     f.Current.SizeBytes,
			UploadedAt:    f.Current.CreatedAt.UTC().Format(time.RFC3339),
			HasLatest:     f.HasLatest,
		}
		if f.Current.Uploader != nil {
			dto.UploadedBy = f.Current.Uploader.FullName
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

// Upload — multipart-загрузка: без parent_file_id создаёт файл с версией №1,
// с parent_file_id добавляет версию к существующему файлу.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	// Лимит общего тела запроса
	maxBody := int64(h.Config.UploadMaxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}
	maxContent := int64(h.Config.UploadMaxSizeMB) * 1024 * 1024
	if int64(len(content)) > maxContent {
		h.Logger.Warnw("Upload: payload too large", "size", len(content), "limit", maxContent)
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	comment := r.FormValue("comment")

	if parent := r.FormValue("parent_file_id"); parent != "" {
		fileID, err := strconv.ParseInt(parent, 10, 64)
		if err != nil {
			http.Error(w, "invalid parent_file_id", http.StatusBadRequest)
			return
		}
		v, err := h.FileService.AddVersion(r.Context(), fileID, uid, content, comment)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"file_id":        fileID,
			"version_id":     v.ID,
			"version_number": v.VersionNumber,
			"size":           v.SizeBytes,
		})
		return
	}

	f, err := h.FileService.CreateFile(r.Context(), projectID, uid,
		r.FormValue("title"), r.FormValue("description"), content, comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"file_id":        f.ID,
		"version_number": 1,
		"size":           len(content),
	})
}

// Versions — история версий файла, новейшая первой.
func (h *FileHandler) Versions(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID, err := pathID(r, "fileID")
	if err != nil {
		http.Error(w, "invalid file id", http.StatusBadRequest)
		return
	}

	versions, err := h.FileService.ListVersions(r.Context(), fileID, uid)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]versionDTO, 0, len(versions))
	for _, v := range versions {
		dto := versionDTO{
			ID:            v.Version.ID,
			VersionNumber: v.Version.VersionNumber,
			SizeBytes:     v.Version.SizeBytes,
			Comment:       v.Version.Comment,
			UploadedAt:    v.Version.CreatedAt.UTC().Format(time.RFC3339),
			IsCurrent:     v.IsCurrent,
		}
		if v.Version.Uploader != nil {
			dto.UploadedBy = v.Version.Uploader.FullName
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

// Download — отдаёт содержимое версии и отмечает скачивание в журнале.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	versionID, err := pathID(r, "versionID")
	if err != nil {
		http.Error(w, "invalid version id", http.StatusBadRequest)
		return
	}

	v, data, err := h.FileService.Download(r.Context(), versionID, uid)
	if err != nil {
		writeError(w, err)
		return
	}

	name := "download"
	if v.File != nil {
		name = v.File.Title
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

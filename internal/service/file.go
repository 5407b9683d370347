package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sortify/internal/model"
	"sortify/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileService — хранилище файловых линий и журнал скачиваний.
// Версии неизменяемы; загрузка только добавляет версию с номером max+1.
type FileService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewFileService(db *gorm.DB, logger *zap.SugaredLogger) *FileService {
	return &FileService{db: db, logger: logger}
}

// FileSummary — строка списка файлов проекта.
type FileSummary struct {
	File      model.File
	Current   model.FileVersion
	HasLatest bool // скачал ли запрашивающий текущую версию
}

// VersionView — строка истории версий файла.
type VersionView struct {
	Version   model.FileVersion
	IsCurrent bool
}

// requireUploadRole перечитывает роль актора в рамках переданного снимка БД.
func requireUploadRole(ctx context.Context, tx *gorm.DB, projectID, actorID int64) error {
	m, err := repo.NewMembershipRepository(tx).Get(ctx, projectID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return err
	}
	if !m.Role.CanUpload() {
		return ErrPermissionDenied
	}
	return nil
}

func requireAnyRole(ctx context.Context, tx *gorm.DB, projectID, userID int64) error {
	_, err := repo.NewMembershipRepository(tx).Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return err
	}
	return nil
}

// CreateFile создаёт файл с версией №1. Требует роли владельца, админа или
// редактора; reader только читает.
func (s *FileService) CreateFile(ctx context.Context, projectID, actorID int64, title, description string, content []byte, comment string) (*model.File, error) {
	if strings.TrimSpace(title) == "" || len(content) == 0 {
		return nil, ErrInvalidInput
	}

	var file *model.File
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.NewProjectRepository(tx).GetByID(ctx, projectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := requireUploadRole(ctx, tx, projectID, actorID); err != nil {
			return err
		}

		f := &model.File{ProjectID: projectID, Title: title, Description: description}
		if err := repo.NewFileRepository(tx).CreateFile(ctx, f); err != nil {
			return err
		}
		if _, err := s.appendVersion(ctx, tx, f, actorID, 1, content, comment); err != nil {
			return err
		}
		file = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("file created", "project_id", projectID, "file_id", file.ID, "uploader_id", actorID)
	return file, nil
}

// AddVersion добавляет очередную версию файла. Номер присваивается под
// блокировкой строки файла; уникальный индекс (file_id, version_number)
// страхует гонку — проигравший получает ErrConflict.
func (s *FileService) AddVersion(ctx context.Context, fileID, actorID int64, content []byte, comment string) (*model.FileVersion, error) {
	if len(content) == 0 {
		return nil, ErrInvalidInput
	}

	var created *model.FileVersion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		files := repo.NewFileRepository(tx)

		f, err := files.GetFileForUpdate(ctx, fileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := requireUploadRole(ctx, tx, f.ProjectID, actorID); err != nil {
			return err
		}

		max, err := files.MaxVersionNumber(ctx, fileID)
		if err != nil {
			return err
		}
		v, err := s.appendVersion(ctx, tx, f, actorID, max+1, content, comment)
		if err != nil {
			return err
		}
		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("version added", "file_id", fileID, "version", created.VersionNumber, "uploader_id", actorID)
	return created, nil
}

func (s *FileService) appendVersion(ctx context.Context, tx *gorm.DB, f *model.File, uploaderID int64, number int, content []byte, comment string) (*model.FileVersion, error) {
	blobID := uuid.NewString()
	if _, err := repo.NewBlobRepository(tx).CreateIfAbsent(ctx, blobID, content); err != nil {
		return nil, err
	}

	v := &model.FileVersion{
		FileID:        f.ID,
		VersionNumber: number,
		BlobID:        blobID,
		SizeBytes:     int64(len(content)),
		Comment:       comment,
		UploaderID:    uploaderID,
	}
	if err := repo.NewFileRepository(tx).CreateVersion(ctx, v); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	// загрузка версии сдвигает отметку последнего изменения проекта
	if err := repo.NewProjectRepository(tx).Touch(ctx, f.ProjectID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return v, nil
}

// ListFiles возвращает файлы проекта, самые недавно изменённые первыми
// (по дате загрузки текущей версии). Читать может любой участник; HasLatest
// выводится из журнала скачиваний на каждом чтении.
func (s *FileService) ListFiles(ctx context.Context, projectID, userID int64) ([]FileSummary, error) {
	if err := requireAnyRole(ctx, s.db, projectID, userID); err != nil {
		return nil, err
	}

	current, err := repo.NewFileRepository(s.db).ListCurrentVersionsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(current))
	for _, v := range current {
		ids = append(ids, v.ID)
	}
	downloaded, err := repo.NewDownloadRepository(s.db).DownloadedSet(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]FileSummary, 0, len(current))
	for _, v := range current {
		sum := FileSummary{Current: v, HasLatest: downloaded[v.ID]}
		if v.File != nil {
			sum.File = *v.File
		}
		out = append(out, sum)
	}
	return out, nil
}

// ListVersions возвращает историю файла по убыванию номера, новейшая
// помечена как текущая.
func (s *FileService) ListVersions(ctx context.Context, fileID, userID int64) ([]VersionView, error) {
	files := repo.NewFileRepository(s.db)

	f, err := files.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := requireAnyRole(ctx, s.db, f.ProjectID, userID); err != nil {
		return nil, err
	}

	versions, err := files.ListVersions(ctx, fileID)
	if err != nil {
		return nil, err
	}
	out := make([]VersionView, 0, len(versions))
	for i, v := range versions {
		out = append(out, VersionView{Version: v, IsCurrent: i == 0})
	}
	return out, nil
}

// Download отдаёт содержимое версии и идемпотентно отмечает скачивание.
func (s *FileService) Download(ctx context.Context, versionID, userID int64) (*model.FileVersion, []byte, error) {
	files := repo.NewFileRepository(s.db)

	v, err := files.GetVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if v.File == nil {
		return nil, nil, ErrNotFound
	}
	if err := requireAnyRole(ctx, s.db, v.File.ProjectID, userID); err != nil {
		return nil, nil, err
	}

	blob, err := repo.NewBlobRepository(s.db).Get(ctx, v.BlobID)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.NewDownloadRepository(s.db).Record(ctx, userID, versionID); err != nil {
		return nil, nil, err
	}
	return v, blob.Data, nil
}

// RecordDownload — отметка скачивания без выдачи содержимого.
func (s *FileService) RecordDownload(ctx context.Context, versionID, userID int64) error {
	if _, err := repo.NewFileRepository(s.db).GetVersion(ctx, versionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return repo.NewDownloadRepository(s.db).Record(ctx, userID, versionID)
}

// HasLatest сообщает, скачал ли пользователь текущую версию файла.
// Значение всегда выводится заново: свежая версия обнуляет признак для всех
// до повторного скачивания.
func (s *FileService) HasLatest(ctx context.Context, userID, fileID int64) (bool, error) {
	cur, err := repo.NewFileRepository(s.db).CurrentVersion(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	return repo.NewDownloadRepository(s.db).Has(ctx, userID, cur.ID)
}

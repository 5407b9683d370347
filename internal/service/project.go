package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"sortify/internal/model"
	"sortify/internal/repo"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService — создание, чтение и удаление проектов.
type ProjectService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewProjectService(db *gorm.DB, logger *zap.SugaredLogger) *ProjectService {
	return &ProjectService{db: db, logger: logger}
}

// ProjectOverview — строка списка «мои проекты»: метаданные плюс сводка
// свежести и последнего изменения.
type ProjectOverview struct {
	Project        model.Project
	Role           model.Role
	CreatorName    string
	CreatorPic     string
	UpToDate       bool // нет ли в проекте нескачанных текущих версий
	LastModifiedBy string
	LastModifiedAt time.Time
}

// Create создаёт проект; создатель в той же транзакции становится
// единственным owner.
func (s *ProjectService) Create(ctx context.Context, creatorID int64, name, description string) (*model.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}

	p := &model.Project{Name: name, Description: description, CreatorID: creatorID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.NewProjectRepository(tx).Create(ctx, p); err != nil {
			return err
		}
		m := &model.Membership{ProjectID: p.ID, UserID: creatorID, Role: model.RoleOwner}
		return repo.NewMembershipRepository(tx).Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("project created", "project_id", p.ID, "creator_id", creatorID)
	return p, nil
}

// Get возвращает проект и роль запрашивающего в нём.
func (s *ProjectService) Get(ctx context.Context, projectID, userID int64) (*model.Project, model.Role, error) {
	m, err := repo.NewMembershipRepository(s.db).Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPermissionDenied
		}
		return nil, "", err
	}

	p, err := repo.NewProjectRepository(s.db).GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return p, m.Role, nil
}

// Delete удаляет проект со всем содержимым. Разрешено только владельцу.
// Зависимые строки удаляются явно в одной транзакции, чтобы каскад не
// зависел от настроек внешних ключей подложки.
func (s *ProjectService) Delete(ctx context.Context, projectID, actorID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := repo.NewMembershipRepository(tx).Get(ctx, projectID, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPermissionDenied
			}
			return err
		}
		if actor.Role != model.RoleOwner {
			return ErrPermissionDenied
		}

		var fileIDs []int64
		if err := tx.Model(&model.File{}).Where("project_id = ?", projectID).Pluck("id", &fileIDs).Error; err != nil {
			return err
		}
		if len(fileIDs) > 0 {
			var versionIDs []int64
			if err := tx.Model(&model.FileVersion{}).Where("file_id IN ?", fileIDs).Pluck("id", &versionIDs).Error; err != nil {
				return err
			}
			var blobIDs []string
			if err := tx.Model(&model.FileVersion{}).Where("file_id IN ?", fileIDs).Pluck("blob_id", &blobIDs).Error; err != nil {
				return err
			}
			if len(versionIDs) > 0 {
				if err := tx.Where("version_id IN ?", versionIDs).Delete(&model.DownloadRecord{}).Error; err != nil {
					return err
				}
				if err := tx.Where("file_id IN ?", fileIDs).Delete(&model.FileVersion{}).Error; err != nil {
					return err
				}
			}
			if len(blobIDs) > 0 {
				if err := tx.Where("id IN ?", blobIDs).Delete(&model.Blob{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&model.File{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Membership{}).Error; err != nil {
			return err
		}
		return repo.NewProjectRepository(tx).Delete(ctx, projectID)
	})
}

// ListForUser — сводка по всем проектам пользователя. Проект считается
// несвежим, когда в нём есть текущая версия, которую пользователь не скачал;
// версии, загруженные самим пользователем, несвежести не создают. Порядок:
// сначала несвежие, внутри — по дате последнего изменения по убыванию.
func (s *ProjectService) ListForUser(ctx context.Context, userID int64) ([]ProjectOverview, error) {
	projects, err := repo.NewProjectRepository(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	members := repo.NewMembershipRepository(s.db)
	files := repo.NewFileRepository(s.db)
	downloads := repo.NewDownloadRepository(s.db)

	out := make([]ProjectOverview, 0, len(projects))
	for _, p := range projects {
		ov := ProjectOverview{Project: p, UpToDate: true, LastModifiedAt: p.CreatedAt}
		if p.Creator != nil {
			ov.CreatorName = p.Creator.FullName
			ov.CreatorPic = p.Creator.ProfilePic
		}

		if m, err := members.Get(ctx, p.ID, userID); err == nil {
			ov.Role = m.Role
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		current, err := files.ListCurrentVersionsByProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if len(current) > 0 {
			// список отсортирован по дате загрузки по убыванию
			newest := current[0]
			ov.LastModifiedAt = newest.CreatedAt
			if newest.Uploader != nil {
				ov.LastModifiedBy = newest.Uploader.FullName
			}

			ids := make([]int64, 0, len(current))
			for _, v := range current {
				ids = append(ids, v.ID)
			}
			downloaded, err := downloads.DownloadedSet(ctx, userID, ids)
			if err != nil {
				return nil, err
			}
			for _, v := range current {
				if v.UploaderID == userID {
					continue // собственная загрузка свежести не требует
				}
				if !downloaded[v.ID] {
					ov.UpToDate = false
					break
				}
			}
		}
		out = append(out, ov)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpToDate != out[j].UpToDate {
			return !out[i].UpToDate // несвежие первыми
		}
		return out[i].LastModifiedAt.After(out[j].LastModifiedAt)
	})
	return out, nil
}

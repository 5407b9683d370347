package repo

import (
	"context"
	"time"

	"sortify/internal/model"

	"gorm.io/gorm"
)

// ProjectRepository — контракт доступа к проектам.
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id int64) (*model.Project, error)

	// ListByUser возвращает проекты, в которых пользователь состоит,
	// вместе с данными создателя.
	ListByUser(ctx context.Context, userID int64) ([]model.Project, error)

	// Touch сдвигает отметку последнего изменения (вызывается при загрузке версии).
	Touch(ctx context.Context, id int64, at time.Time) error

	Delete(ctx context.Context, id int64) error
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepository создаёт реализацию репозитория для Project.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).Preload("Creator").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListByUser(ctx context.Context, userID int64) ([]model.Project, error) {
	var out []model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN user_project ON user_project.project_id = project.id").
		Where("user_project.user_id = ?", userID).
		Preload("Creator").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}

func (r *projectRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Project{}, id).Error
}

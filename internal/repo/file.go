package repo

import (
	"context"

	"sortify/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileRepository — контракт доступа к файлам и их версиям.
type FileRepository interface {
	CreateFile(ctx context.Context, f *model.File) error
	GetFile(ctx context.Context, id int64) (*model.File, error)

	// GetFileForUpdate читает файл с блокировкой строки (SELECT ... FOR UPDATE),
	// чтобы присвоение номера версии шло под взаимным исключением.
	GetFileForUpdate(ctx context.Context, id int64) (*model.File, error)

	MaxVersionNumber(ctx context.Context, fileID int64) (int, error)
	CreateVersion(ctx context.Context, v *model.FileVersion) error

	GetVersion(ctx context.Context, id int64) (*model.FileVersion, error)

	// CurrentVersion — версия файла с наибольшим номером.
	CurrentVersion(ctx context.Context, fileID int64) (*model.FileVersion, error)

	// ListVersions — версии файла по убыванию номера, с данными загрузившего.
	ListVersions(ctx context.Context, fileID int64) ([]model.FileVersion, error)

	// ListCurrentVersionsByProject — текущие версии всех файлов проекта,
	// по убыванию даты загрузки (контрактный порядок списка файлов).
	ListCurrentVersionsByProject(ctx context.Context, projectID int64) ([]model.FileVersion, error)
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepository создаёт реализацию репозитория для File/FileVersion.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) CreateFile(ctx context.Context, f *model.File) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fileRepo) GetFile(ctx context.Context, id int64) (*model.File, error) {
	var f model.File
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) GetFileForUpdate(ctx context.Context, id int64) (*model.File, error) {
	var f model.File
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) MaxVersionNumber(ctx context.Context, fileID int64) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&model.FileVersion{}).
		Where("file_id = ?", fileID).
		Select("MAX(version_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *fileRepo) CreateVersion(ctx context.Context, v *model.FileVersion) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *fileRepo) GetVersion(ctx context.Context, id int64) (*model.FileVersion, error) {
	var v model.FileVersion
	if err := r.db.WithContext(ctx).Preload("File").First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *fileRepo) CurrentVersion(ctx context.Context, fileID int64) (*model.FileVersion, error) {
	var v model.FileVersion
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("version_number DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *fileRepo) ListVersions(ctx context.Context, fileID int64) ([]model.FileVersion, error) {
	var out []model.FileVersion
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("version_number DESC").
		Preload("Uploader").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fileRepo) ListCurrentVersionsByProject(ctx context.Context, projectID int64) ([]model.FileVersion, error) {
	latest := r.db.Model(&model.FileVersion{}).
		Select("file_id, MAX(version_number) AS max_no").
		Group("file_id")

	var out []model.FileVersion
	err := r.db.WithContext(ctx).Model(&model.FileVersion{}).
		Joins("JOIN (?) latest ON latest.file_id = file_version.file_id AND latest.max_no = file_version.version_number", latest).
		Joins("JOIN file_data ON file_data.id = file_version.file_id").
		Where("file_data.project_id = ?", projectID).
		Order("file_version.created_at DESC").
		Preload("File").
		Preload("Uploader").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

package repo

import (
	"context"

	"sortify/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DownloadRepository — журнал скачиваний (user, version).
type DownloadRepository interface {
	// Record идемпотентно отмечает скачивание: повторная запись той же пары
	// не даёт наблюдаемого эффекта.
	Record(ctx context.Context, userID, versionID int64) error

	// Has сообщает, скачивал ли пользователь версию.
	Has(ctx context.Context, userID, versionID int64) (bool, error)

	// DownloadedSet — батч-вариант Has для списков файлов: какие из versionIDs
	// пользователь уже скачал.
	DownloadedSet(ctx context.Context, userID int64, versionIDs []int64) (map[int64]bool, error)
}

type downloadRepo struct {
	db *gorm.DB
}

// NewDownloadRepository создаёт реализацию журнала скачиваний.
func NewDownloadRepository(db *gorm.DB) DownloadRepository {
	return &downloadRepo{db: db}
}

func (r *downloadRepo) Record(ctx context.Context, userID, versionID int64) error {
	rec := &model.DownloadRecord{UserID: userID, VersionID: versionID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "version_id"}},
		DoNothing: true,
	}).Create(rec).Error
}

func (r *downloadRepo) Has(ctx context.Context, userID, versionID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.DownloadRecord{}).
		Where("user_id = ? AND version_id = ?", userID, versionID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *downloadRepo) DownloadedSet(ctx context.Context, userID int64, versionIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(versionIDs))
	if len(versionIDs) == 0 {
		return set, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.DownloadRecord{}).
		Where("user_id = ? AND version_id IN ?", userID, versionIDs).
		Pluck("version_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

package repo

import (
	"context"

	"sortify/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlobRepository — минимальный контракт доступа к содержимому версий.
type BlobRepository interface {
	// CreateIfAbsent пытается создать запись. Если существует — ничего не делает.
	CreateIfAbsent(ctx context.Context, id string, data []byte) (created bool, err error)

	Get(ctx context.Context, id string) (*model.Blob, error)
}

type blobRepo struct {
	db *gorm.DB
}

// NewBlobRepository создаёт реализацию репозитория для Blob.
func NewBlobRepository(db *gorm.DB) BlobRepository {
	return &blobRepo{db: db}
}

func (r *blobRepo) CreateIfAbsent(ctx context.Context, id string, data []byte) (bool, error) {
	b := &model.Blob{ID: id, Data: data}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(b)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *blobRepo) Get(ctx context.Context, id string) (*model.Blob, error) {
	var b model.Blob
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

package repo

import (
	"context"

	"sortify/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository — контракт доступа к записям (проект, пользователь) → роль.
type MembershipRepository interface {
	Create(ctx context.Context, m *model.Membership) error

	// Get возвращает запись участника или gorm.ErrRecordNotFound.
	Get(ctx context.Context, projectID, userID int64) (*model.Membership, error)

	// GetForUpdate читает запись участника с блокировкой строки
	// (SELECT ... FOR UPDATE). На READ COMMITTED обычное чтение в транзакции
	// не образует снимка: роль, прочитанная без блокировки, может быть
	// понижена параллельным коммитом до записи результата.
	GetForUpdate(ctx context.Context, projectID, userID int64) (*model.Membership, error)

	UpdateRole(ctx context.Context, projectID, userID int64, role model.Role) error
	Delete(ctx context.Context, projectID, userID int64) error

	// ListByProject возвращает всех участников проекта с данными профиля.
	// Контрактную сортировку выполняет сервис.
	ListByProject(ctx context.Context, projectID int64) ([]model.Membership, error)
}

type membershipRepo struct {
	db *gorm.DB
}

// NewMembershipRepository создаёт реализацию репозитория для Membership.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, m *model.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *membershipRepo) Get(ctx context.Context, projectID, userID int64) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) GetForUpdate(ctx context.Context, projectID, userID int64) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) UpdateRole(ctx context.Context, projectID, userID int64, role model.Role) error {
	return r.db.WithContext(ctx).Model(&model.Membership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role).Error
}

func (r *membershipRepo) Delete(ctx context.Context, projectID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.Membership{}).Error
}

func (r *membershipRepo) ListByProject(ctx context.Context, projectID int64) ([]model.Membership, error) {
	var out []model.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Preload("User").
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

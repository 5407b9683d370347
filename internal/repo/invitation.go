package repo

import (
	"context"

	"sortify/internal/model"

	"gorm.io/gorm"
)

// InvitationRepository — контракт доступа к приглашениям.
type InvitationRepository interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	UpdateStatus(ctx context.Context, id int64, status model.InvitationStatus) error
	ListByProject(ctx context.Context, projectID int64) ([]model.Invitation, error)
}

type invitationRepo struct {
	db *gorm.DB
}

// NewInvitationRepository создаёт реализацию репозитория для Invitation.
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invitationRepo) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepo) UpdateStatus(ctx context.Context, id int64, status model.InvitationStatus) error {
	return r.db.WithContext(ctx).Model(&model.Invitation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *invitationRepo) ListByProject(ctx context.Context, projectID int64) ([]model.Invitation, error) {
	var out []model.Invitation
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

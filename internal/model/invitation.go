package model

import "time"

// InvitationStatus — состояние приглашения.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation — предложение вступить в проект. Членством становится только
// после принятия; до этого живёт независимо от роли пригласившего.
type Invitation struct {
	ID int64 `gorm:"primaryKey"`

	ProjectID int64    `gorm:"not null;index"`
	Project   *Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Email string `gorm:"not null;index"`

	InviterID int64 `gorm:"not null"`
	Inviter   *User `gorm:"foreignKey:InviterID"`

	Token  string           `gorm:"type:uuid;uniqueIndex;not null"`
	Status InvitationStatus `gorm:"type:text;not null;default:pending"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

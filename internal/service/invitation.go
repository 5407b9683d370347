package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"sortify/internal/model"
	"sortify/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// InvitationService — жизненный цикл приглашений: pending → accepted,
// либо протухание по TTL. Доставка письма — внешний коллаборатор;
// здесь только создание и принятие.
type InvitationService struct {
	db     *gorm.DB
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewInvitationService(db *gorm.DB, ttl time.Duration, logger *zap.SugaredLogger) *InvitationService {
	return &InvitationService{db: db, ttl: ttl, logger: logger}
}

// InviteOutcome — исход одного адреса при пакетном приглашении.
type InviteOutcome struct {
	Email      string
	Invitation *model.Invitation
	Err        error
}

// Invite создаёт pending-приглашение от имени actor (owner или admin).
// Если адрес уже принадлежит участнику проекта — ErrAlreadyMember. Проверка
// членства и вставка идут одной транзакцией: вступивший между ними участник
// не получает лишнего pending-приглашения.
func (s *InvitationService) Invite(ctx context.Context, projectID, actorID int64, email string) (*model.Invitation, error) {
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidInput
	}

	inv := &model.Invitation{
		ProjectID: projectID,
		Email:     email,
		InviterID: actorID,
		Token:     uuid.NewString(),
		Status:    model.InvitationPending,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := repo.NewMembershipRepository(tx)

		actor, err := members.Get(ctx, projectID, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPermissionDenied
			}
			return err
		}
		if actor.Role != model.RoleOwner && actor.Role != model.RoleAdmin {
			return ErrPermissionDenied
		}

		// адрес уже состоит в проекте?
		if u, err := repo.NewUserRepository(tx).GetUserByEmail(ctx, email); err == nil {
			if _, err := members.Get(ctx, projectID, u.ID); err == nil {
				return ErrAlreadyMember
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return repo.NewInvitationRepository(tx).Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("invitation created", "project_id", projectID, "inviter_id", actorID, "email", email)
	return inv, nil
}

// InviteMany обрабатывает адреса независимо: отказ по одному адресу не
// прерывает остальные. Вызывающий получает по исходу на каждый адрес.
func (s *InvitationService) InviteMany(ctx context.Context, projectID, actorID int64, emails []string) []InviteOutcome {
	out := make([]InviteOutcome, 0, len(emails))
	for _, email := range emails {
		inv, err := s.Invite(ctx, projectID, actorID, email)
		out = append(out, InviteOutcome{Email: email, Invitation: inv, Err: err})
	}
	return out
}

// Accept принимает приглашение по токену и создаёт членство с ролью reader.
// Повторное принятие (дубль клика, гонка дублирующих приглашений) даёт
// ровно одно членство: второй вызов получает ErrAlreadyMember.
func (s *InvitationService) Accept(ctx context.Context, token string, userID int64) (*model.Membership, error) {
	var created *model.Membership
	var denied error // типизированный отказ, коммитящий смену статуса
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitations := repo.NewInvitationRepository(tx)

		inv, err := invitations.GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		switch inv.Status {
		case model.InvitationPending:
			// ок
		case model.InvitationAccepted:
			return ErrAlreadyMember
		case model.InvitationExpired:
			return ErrExpired
		default:
			return ErrNotFound
		}
		if s.ttl > 0 && time.Since(inv.CreatedAt) > s.ttl {
			if err := invitations.UpdateStatus(ctx, inv.ID, model.InvitationExpired); err != nil {
				return err
			}
			denied = ErrExpired
			return nil
		}

		members := repo.NewMembershipRepository(tx)
		if _, err := members.Get(ctx, inv.ProjectID, userID); err == nil {
			// членство уже есть: приглашение гасим, второе членство не создаём
			if err := invitations.UpdateStatus(ctx, inv.ID, model.InvitationAccepted); err != nil {
				return err
			}
			denied = ErrAlreadyMember
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		m := &model.Membership{ProjectID: inv.ProjectID, UserID: userID, Role: model.RoleReader}
		if err := members.Create(ctx, m); err != nil {
			if repo.IsDuplicate(err) {
				return ErrAlreadyMember
			}
			return err
		}
		if err := invitations.UpdateStatus(ctx, inv.ID, model.InvitationAccepted); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if denied != nil {
		return nil, denied
	}

	s.logger.Infow("invitation accepted", "project_id", created.ProjectID, "user_id", userID)
	return created, nil
}

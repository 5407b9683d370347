package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"sortify/internal/model"
	"sortify/internal/repo"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MembershipService — реестр членств и ролевая политика.
// Все мутации выполняются в транзакции, а роли актора и цели перечитываются
// под блокировкой строк: параллельное понижение актора ждёт завершения его
// операции или опережает её, но разжалованный admin не доводит до конца
// привилегированное действие.
type MembershipService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewMembershipService(db *gorm.DB, logger *zap.SugaredLogger) *MembershipService {
	return &MembershipService{db: db, logger: logger}
}

// RemoveKind — вариант операции удаления, разрешаемый один раз на границе:
// сам о себе — Leave, обо всех прочих — RemoveOther.
type RemoveKind int

const (
	RemoveOther RemoveKind = iota
	Leave
)

// RemoveResult — исход удаления. Left=true сигнализирует вызывающему, что
// сессию стоит увести со страниц проекта; сам сервис редиректов не делает.
type RemoveResult struct {
	Left bool
}

// MemberView — участник проекта вместе с данными профиля.
type MemberView struct {
	UserID     int64
	FullName   string
	Handle     string
	Email      string
	ProfilePic string
	Role       model.Role
}

// RoleOf возвращает роль пользователя в проекте или ErrNotFound.
func (s *MembershipService) RoleOf(ctx context.Context, projectID, userID int64) (model.Role, error) {
	m, err := repo.NewMembershipRepository(s.db).Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return m.Role, nil
}

// ChangeRole меняет роль участника target на newRole от имени actor.
// Назначение owner всегда отклоняется: передача владения — отдельная,
// не поддерживаемая здесь операция.
func (s *MembershipService) ChangeRole(ctx context.Context, projectID, actorID, targetID int64, newRole model.Role) error {
	if !newRole.Valid() || newRole == model.RoleOwner {
		return ErrInvalidRole
	}
	if actorID == targetID {
		return ErrInvalidInput
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := repo.NewMembershipRepository(tx)

		actor, err := members.GetForUpdate(ctx, projectID, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPermissionDenied
			}
			return err
		}
		target, err := members.GetForUpdate(ctx, projectID, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !canManage(actor.Role, target.Role, actionChangeRole) {
			return ErrPermissionDenied
		}
		return members.UpdateRole(ctx, projectID, targetID, newRole)
	})
}

// Remove удаляет участника проекта. Вариант Leave (собственный уход)
// разрешён любой роли, кроме owner: владелец покидает проект только через
// передачу владения, которой здесь нет.
func (s *MembershipService) Remove(ctx context.Context, projectID, actorID, targetID int64, kind RemoveKind) (RemoveResult, error) {
	switch kind {
	case Leave:
		if actorID != targetID {
			return RemoveResult{}, ErrInvalidInput
		}
	case RemoveOther:
		if actorID == targetID {
			return RemoveResult{}, ErrInvalidInput
		}
	default:
		return RemoveResult{}, ErrInvalidInput
	}

	var res RemoveResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := repo.NewMembershipRepository(tx)

		actor, err := members.GetForUpdate(ctx, projectID, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPermissionDenied
			}
			return err
		}

		if kind == Leave {
			if actor.Role == model.RoleOwner {
				return ErrPermissionDenied
			}
			if err := members.Delete(ctx, projectID, actorID); err != nil {
				return err
			}
			res = RemoveResult{Left: true}
			return nil
		}

		target, err := members.GetForUpdate(ctx, projectID, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !canManage(actor.Role, target.Role, actionRemove) {
			return ErrPermissionDenied
		}
		return members.Delete(ctx, projectID, targetID)
	})
	if err != nil {
		return RemoveResult{}, err
	}

	s.logger.Infow("member removed", "project_id", projectID, "actor_id", actorID, "target_id", targetID, "left", res.Left)
	return res, nil
}

// Members возвращает участников проекта в контрактном порядке: ранг роли по
// возрастанию (owner первым), при равном ранге — полное имя без учёта
// регистра. Читать список может любой участник; вторым значением приходит
// роль запрашивающего.
func (s *MembershipService) Members(ctx context.Context, projectID, requesterID int64) ([]MemberView, model.Role, error) {
	members := repo.NewMembershipRepository(s.db)

	requester, err := members.Get(ctx, projectID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPermissionDenied
		}
		return nil, "", err
	}

	rows, err := members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, "", err
	}

	views := make([]MemberView, 0, len(rows))
	for _, m := range rows {
		v := MemberView{UserID: m.UserID, Role: m.Role}
		if m.User != nil {
			v.FullName = m.User.FullName
			v.Handle = m.User.Handle()
			v.Email = m.User.Email
			v.ProfilePic = m.User.ProfilePic
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool {
		ri, rj := views[i].Role.Rank(), views[j].Role.Rank()
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(views[i].FullName) < strings.ToLower(views[j].FullName)
	})

	return views, requester.Role, nil
}

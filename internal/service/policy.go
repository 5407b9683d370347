package service

import "sortify/internal/model"

// manageAction — вид управляющего действия над участником.
type manageAction int

const (
	actionChangeRole manageAction = iota
	actionRemove
)

// canManage — единственная точка ролевой политики. Обе управляющие операции
// (смена роли, удаление участника) консультируются только здесь; правило
// нигде не дублируется.
//
//   - owner управляет всеми, кроме владельца (то есть кроме самого себя);
//   - admin управляет editor и reader, но не owner и не другим admin;
//   - остальные роли не управляют никем.
//
// Случай «сам над собой» сюда не попадает: он разрешается на границе как
// отдельный вариант Leave.
func canManage(actor, target model.Role, action manageAction) bool {
	_ = action // правила совпадают для обоих действий; параметр фиксирует контракт

	switch actor {
	case model.RoleOwner:
		return target != model.RoleOwner
	case model.RoleAdmin:
		return target != model.RoleOwner && target != model.RoleAdmin
	default:
		return false
	}
}

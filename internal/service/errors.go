package service

import "errors"

// Таксономия ошибок ядра. Каждая операция возвращает либо значение, либо
// ровно одну типизированную ошибку; хендлеры сопоставляют их HTTP-статусам
// через errors.Is.
var (
	// ErrPermissionDenied — нарушение ролевой политики.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound — неизвестный проект/файл/версия/приглашение/пользователь.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput — некорректное поле: пустой заголовок, пустой блоб и т.п.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRole — недопустимая целевая роль (в т.ч. назначение owner).
	ErrInvalidRole = errors.New("invalid role")

	// ErrAlreadyMember — конфликт приглашения/принятия: членство уже существует.
	ErrAlreadyMember = errors.New("already a member")

	// ErrConflict — проигранная гонка за номер версии или нарушение
	// инварианта единственного владельца. Ядро не ретраит; ретраи — забота
	// вызывающего.
	ErrConflict = errors.New("conflict")

	// ErrExpired — протухшее приглашение.
	ErrExpired = errors.New("invitation expired")

	// ErrEmailTaken — на email уже зарегистрирована учётная запись.
	ErrEmailTaken = errors.New("email already registered")

	// ErrBadCredentials — неверная пара email/пароль.
	ErrBadCredentials = errors.New("bad credentials")
)

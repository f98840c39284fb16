package user

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранилища пользователей.
type Repository interface {
	// Create создаёт нового пользователя.
	// Возвращает ErrUserAlreadyExists при конфликте username, email или CPR.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает пользователя по внутреннему ID.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByUsername возвращает пользователя по имени для входа.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update обновляет данные пользователя.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	Update(ctx context.Context, u *User) error

	// ExistsByUsername проверяет занятость имени пользователя.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail проверяет занятость адреса почты.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByCPR проверяет занятость CPR.
	ExistsByCPR(ctx context.Context, cpr string) (bool, error)
}

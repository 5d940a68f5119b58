// Package models содержит доменную модель пользователя системы:
// учётную запись, роль, данные подписки, список купленных курсов
// и служебные поля для refresh-токена и восстановления пароля.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import (
	"fmt"
	"time"
)

// Role — закрытое множество ролей пользователя.
type Role string

// Возможные роли пользователя. Роль определяет доступ к маршрутам.
const (
	RoleGuest   Role = "GUEST"
	RoleUser    Role = "USER"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole проверяет строковое значение роли на границе данных.
// Неизвестные значения отклоняются.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGuest, RoleUser, RoleTeacher, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// IsStaff сообщает, относится ли роль к персоналу платформы.
// TEACHER и ADMIN не являются подписчиками и не оплачивают подписку.
func (r Role) IsStaff() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// User представляет зарегистрированного пользователя системы.
// PasswordHash и служебные токены никогда не сериализуются наружу.
type User struct {
	UID              string       `json:"uid"`
	Email            string       `json:"email"`
	FullName         string       `json:"full_name"`
	PasswordHash     string       `json:"-"`
	Role             Role         `json:"role"`
	AvatarID         string       `json:"avatar_id,omitempty"`
	AvatarURL        string       `json:"avatar_url,omitempty"`
	Subscription     Subscription `json:"subscription"`
	PurchasedCourses []string     `json:"purchased_courses"`
	ResetTokenHash   *string      `json:"-"`
	ResetTokenExpiry *time.Time   `json:"-"`
	RefreshToken     *string      `json:"-"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// HasPurchased сообщает, куплен ли пользователем курс с данным идентификатором.
func (u *User) HasPurchased(courseID string) bool {
	for _, id := range u.PurchasedCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

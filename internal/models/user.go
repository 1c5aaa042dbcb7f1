// Package models содержит доменную модель пользователя системы,
// включающую учётные данные и поля подписки на тариф Pro.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string // Уникальный идентификатор пользователя
	Name         string // Имя пользователя
	Email        string // Электронная почта (уникальная)
	PasswordHash string // bcrypt-хэш пароля

	CustomerID         string     // Идентификатор клиента у биллинг-провайдера
	SubscriptionID     string     // Идентификатор подписки у биллинг-провайдера
	PriceID            string     // Идентификатор тарифа
	IsSubscribed       bool       // Флаг активной подписки
	SubscriptionExpiry *time.Time // Дата истечения оплаченной подписки, nil если не оплачивалась
}

// UploadAllowed сообщает, разрешена ли пользователю пакетная загрузка
// изображений на момент now. Разрешение действует до даты истечения
// включительно: при точном равенстве момент ещё входит в оплаченное окно.
func (u *User) UploadAllowed(now time.Time) bool {
	if u.SubscriptionExpiry == nil {
		return false
	}
	return !now.After(*u.SubscriptionExpiry)
}

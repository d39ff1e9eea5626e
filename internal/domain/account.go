package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role роль пользователя
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Account учетная запись, связанная с клиентом через username
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasRole проверяет наличие роли
func (a Account) HasRole(r Role) bool {
	return slices.Contains(a.Roles, r)
}

// AccountRequest данные аккаунта, передаваемые при создании клиента
type AccountRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=4"`
}

// Principal аутентифицированный вызывающий
type Principal struct {
	Username string
	Roles    []Role
}

// HasRole проверяет наличие роли у вызывающего
func (p Principal) HasRole(r Role) bool {
	return slices.Contains(p.Roles, r)
}

// PatchOperation одна операция частичного обновления
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

const (
	PatchReplace = "replace"
	PatchAdd     = "add"
	PatchRemove  = "remove"
)

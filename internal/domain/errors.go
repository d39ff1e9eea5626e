package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate дубликат записи
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnauthenticated пользователь не аутентифицирован
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnauthorized пользователь не авторизован
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTimeoutExceeded превышено время ожидания
	ErrTimeoutExceeded = errors.New("timeout exceeded")

	// ErrInvalidVersion версия отсутствует, не число или устарела
	ErrInvalidVersion = errors.New("invalid version")

	// ErrEmailExists email уже используется другим клиентом
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidAccount при создании клиента не передан аккаунт
	ErrInvalidAccount = errors.New("invalid account")

	// ErrUsernameExists имя пользователя уже занято
	ErrUsernameExists = errors.New("username already exists")

	// ErrVersionConflict запись была изменена параллельно (проигравший CAS)
	ErrVersionConflict = errors.New("record was modified concurrently")
)

// ValidationError представляет ошибку валидации
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors представляет набор ошибок валидации
type ValidationErrors []ValidationError

// Error реализует интерфейс error
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	if len(e) == 1 {
		return fmt.Sprintf("validation failed: %s - %s", e[0].Field, e[0].Message)
	}

	return fmt.Sprintf("validation failed: %d errors", len(e))
}

// Add добавляет ошибку валидации
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors проверяет наличие ошибок
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Fields возвращает список полей с ошибками
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, err := range e {
		fields[i] = err.Field
	}
	return fields
}

// Messages возвращает сообщения в исходном порядке
func (e ValidationErrors) Messages() []string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Message
	}
	return msgs
}

// GetByField возвращает сообщение об ошибке для указанного поля
func (e ValidationErrors) GetByField(field string) string {
	for _, err := range e {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

// NotFoundError представляет ошибку "не найдено"
type NotFoundError struct {
	Entity string
	ID     string
}

// Error реализует интерфейс error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Is проверяет, является ли ошибка ошибкой типа "не найдено"
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError создает новую ошибку "не найдено"
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// DuplicateError представляет ошибку дубликата
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

// Error реализует интерфейс error
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Entity, e.Field, e.Value)
}

// Is сопоставляет дубликат email/username с соответствующей доменной ошибкой
func (e *DuplicateError) Is(target error) bool {
	switch target {
	case ErrDuplicate:
		return true
	case ErrEmailExists:
		return e.Field == "email"
	case ErrUsernameExists:
		return e.Field == "username"
	}
	return false
}

// NewDuplicateError создает новую ошибку дубликата
func NewDuplicateError(entity, field, value string) *DuplicateError {
	return &DuplicateError{
		Entity: entity,
		Field:  field,
		Value:  value,
	}
}

// VersionError описывает отклоненный токен версии
type VersionError struct {
	Supplied string
	Stored   int
	Reason   string
}

// Error реализует интерфейс error
func (e *VersionError) Error() string {
	if e.Stored >= 0 {
		return fmt.Sprintf("invalid version %q (stored %d): %s", e.Supplied, e.Stored, e.Reason)
	}
	return fmt.Sprintf("invalid version %q: %s", e.Supplied, e.Reason)
}

// Is позволяет сравнивать с ErrInvalidVersion
func (e *VersionError) Is(target error) bool {
	return target == ErrInvalidVersion
}

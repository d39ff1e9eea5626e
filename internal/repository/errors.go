package repository

import "github.com/Dhoini/customer-service/internal/domain"

var (
	// ErrNotFound запись не найдена
	ErrNotFound = domain.ErrNotFound

	// ErrDuplicate дубликат записи
	ErrDuplicate = domain.ErrDuplicate

	// ErrVersionConflict версия записи изменилась между чтением и записью
	ErrVersionConflict = domain.ErrVersionConflict
)

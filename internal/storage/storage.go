package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound объект отсутствует в хранилище
var ErrObjectNotFound = errors.New("object not found")

// Object содержимое объекта. Body закрывает вызывающий.
type Object struct {
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// BlobStore хранилище бинарных объектов по ключу
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

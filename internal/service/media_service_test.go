package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/storage"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaService(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "Miller", "a@b.com", "miller")
	media := NewMediaService(f.repo, storage.NewMemoryStore(), logger.NewNop())
	ctx := context.Background()

	obj, err := media.Download(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, obj)

	require.NoError(t, media.Upload(ctx, created.ID, "image/png", strings.NewReader("first"), 5))
	require.NoError(t, media.Upload(ctx, created.ID, "image/jpeg", strings.NewReader("second"), 6))

	obj, err = media.Download(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, obj)
	defer obj.Body.Close()
	data, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, "image/jpeg", obj.ContentType)
}

func TestMediaService_Errors(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "Miller", "a@b.com", "miller")
	media := NewMediaService(f.repo, storage.NewMemoryStore(), logger.NewNop())
	ctx := context.Background()

	err := media.Upload(ctx, uuid.New(), "image/png", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = media.Upload(ctx, created.ID, "", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	obj, err := media.Download(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, obj)
}

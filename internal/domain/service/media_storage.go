package service

import (
	"context"
	"io"

	"ticketbot/internal/domain/entity"
)

type MediaStorage interface {
	Write(ctx context.Context, path string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]entity.MediaObject, error)
	Open(ctx context.Context, object entity.MediaObject) (io.ReadCloser, error)
}

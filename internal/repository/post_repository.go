package repository

import (
	"context"

	"app/internal/domain/model"
)

// ブログ（周辺機能）。読み取りのみ。
type PostRepository interface {
	ListPublished(ctx context.Context, page int, limit int) ([]model.Post, int64, error)
	FindByID(ctx context.Context, id int64) (model.Post, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

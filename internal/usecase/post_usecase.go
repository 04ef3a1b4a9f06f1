package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/samber/lo"
)

// ブログ（周辺機能）の参照
type PostUsecase struct {
	posts repo.PostRepository
}

func NewPostUsecase(posts repo.PostRepository) *PostUsecase {
	return &PostUsecase{posts: posts}
}

type PostOutput struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Categories []string `json:"categories"`
}

type PostListOutput struct {
	Posts []PostOutput `json:"posts"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
}

func (u *PostUsecase) List(ctx context.Context, page int, limit int) (PostListOutput, error) {
	if page <= 0 {
		page = 1
	}

	posts, total, err := u.posts.ListPublished(ctx, page, limit)
	if err != nil {
		return PostListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return PostListOutput{
		Posts: lo.Map(posts, func(p model.Post, _ int) PostOutput { return toPostOutput(p) }),
		Total: total,
		Page:  page,
	}, nil
}

func (u *PostUsecase) Detail(ctx context.Context, id int64) (PostOutput, error) {
	if id <= 0 {
		return PostOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.posts.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return PostOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return PostOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsPublished {
		return PostOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return toPostOutput(p), nil
}

func (u *PostUsecase) Categories(ctx context.Context) ([]model.Category, error) {
	cats, err := u.posts.ListCategories(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

func toPostOutput(p model.Post) PostOutput {
	return PostOutput{
		ID:    p.ID,
		Title: p.Title,
		Body:  p.Body,
		Categories: lo.Map(p.Categories, func(c model.Category, _ int) string {
			return c.Name
		}),
	}
}

package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type PostGormRepository struct {
	db *gorm.DB
}

func NewPostGormRepository(db *gorm.DB) *PostGormRepository {
	return &PostGormRepository{db: db}
}

func (r *PostGormRepository) ListPublished(ctx context.Context, page int, limit int) ([]model.Post, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	base := r.db.WithContext(ctx).Model(&model.Post{}).Where("is_published = ?", true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Post{}, 0, err
	}

	var posts []model.Post
	offset := (page - 1) * limit
	if err := base.Preload("Categories").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return []model.Post{}, 0, err
	}

	return posts, total, nil
}

func (r *PostGormRepository) FindByID(ctx context.Context, id int64) (model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Preload("Categories").Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Post{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Post{}, err
	}
	return p, nil
}

func (r *PostGormRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&cats).Error; err != nil {
		return []model.Category{}, err
	}
	return cats, nil
}

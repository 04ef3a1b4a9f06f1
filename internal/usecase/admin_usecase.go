package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/sirupsen/logrus"
)

// AdminUsecase は管理者だけが使う商品・会員・注文の変更系。
// 削除は参照チェック付き（注文明細が残る商品、注文が残る会員は消せない）。
type AdminUsecase struct {
	products repo.ProductRepository
	users    repo.UserRepository
	orders   repo.OrderRepository
	log      *logrus.Entry
}

func NewAdminUsecase(
	products repo.ProductRepository,
	users repo.UserRepository,
	orders repo.OrderRepository,
	log *logrus.Entry,
) *AdminUsecase {
	return &AdminUsecase{
		products: products,
		users:    users,
		orders:   orders,
		log:      log,
	}
}

type AdminProductInput struct {
	Name        string
	Description string
	Price       int64
	Stock       int64
	IsActive    bool
}

func (in AdminProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

func (u *AdminUsecase) CreateProduct(ctx context.Context, in AdminProductInput) (ProductOutput, error) {
	if err := in.validate(); err != nil {
		return ProductOutput{}, err
	}

	created, err := u.products.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
	})
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.log.WithField("product_id", created.ID).Info("product created")

	return toProductOutput(created), nil
}

func (u *AdminUsecase) UpdateProduct(ctx context.Context, id int64, in AdminProductInput) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.IsActive = in.IsActive

	if err := u.products.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// DeleteProduct は商品の論理削除。
// 注文明細から参照されている商品はErrProtectedのまま返す（409になる）。
func (u *AdminUsecase) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.products.SoftDelete(ctx, id); err != nil {
		return err
	}

	u.log.WithField("product_id", id).Info("product deleted")
	return nil
}

// DeleteUser は会員削除。注文が残っている会員はErrProtected。
func (u *AdminUsecase) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.users.Delete(ctx, id); err != nil {
		return err
	}

	u.log.WithField("user_id", id).Info("user deleted")
	return nil
}

// DeleteOrder は注文を明細ごと消す（明細だけ残る孤児は作らない）。
func (u *AdminUsecase) DeleteOrder(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.orders.DeleteWithItems(ctx, id); err != nil {
		return err
	}

	u.log.WithField("order_id", id).Info("order deleted")
	return nil
}

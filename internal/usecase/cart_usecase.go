package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/sirupsen/logrus"
)

// CartUsecase はセッションカートの業務ロジックです。
// カート本体はCartStore（Redis）、商品情報はProductRepositoryから引く。
type CartUsecase struct {
	carts    repo.CartStore
	products repo.ProductRepository
	log      *logrus.Entry
}

func NewCartUsecase(
	carts repo.CartStore,
	products repo.ProductRepository,
	log *logrus.Entry,
) *CartUsecase {
	return &CartUsecase{
		carts:    carts,
		products: products,
		log:      log,
	}
}

// カート1行の表示用
type CartLineResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total int64              `json:"total"`
}

// 数量だけ返す（increment/decrementのレスポンス）
type CartQuantityResponse struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// Add はカートに1個追加（無ければ行を作る）。
// 売れない商品・在庫ゼロの商品はカートを触らずエラーを返す。
func (u *CartUsecase) Add(ctx context.Context, token string, productID int64) (CartQuantityResponse, error) {
	if productID <= 0 {
		return CartQuantityResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartQuantityResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartQuantityResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.CanBeSold() {
		return CartQuantityResponse{}, ErrNotSellable
	}
	if !p.IsInStock(1) {
		return CartQuantityResponse{}, ErrInsufficientStock
	}

	cart, err := u.carts.Mutate(ctx, token, func(cart *model.Cart) error {
		cart.Add(productID)
		return nil
	})
	if err != nil {
		return CartQuantityResponse{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	qty, _ := cart.Quantity(productID)
	u.log.WithFields(logrus.Fields{"product_id": productID, "qty": qty}).Debug("added to cart")

	return CartQuantityResponse{ProductID: productID, Quantity: qty}, nil
}

// Increment は数量+1。カートに無い商品ならErrNotFoundInCart。
func (u *CartUsecase) Increment(ctx context.Context, token string, productID int64) (CartQuantityResponse, error) {
	if productID <= 0 {
		return CartQuantityResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	var qty int64
	_, err := u.carts.Mutate(ctx, token, func(cart *model.Cart) error {
		q, ok := cart.Increment(productID)
		if !ok {
			return ErrNotFoundInCart
		}
		qty = q
		return nil
	})
	if errors.Is(err, ErrNotFoundInCart) {
		return CartQuantityResponse{}, ErrNotFoundInCart
	}
	if err != nil {
		return CartQuantityResponse{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	return CartQuantityResponse{ProductID: productID, Quantity: qty}, nil
}

// Decrement は数量-1。カートに無い商品ならErrNotFoundInCart。
// 0になった行はカートから消える（0や負の数量は残さない）。
func (u *CartUsecase) Decrement(ctx context.Context, token string, productID int64) (CartQuantityResponse, error) {
	if productID <= 0 {
		return CartQuantityResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	var qty int64
	_, err := u.carts.Mutate(ctx, token, func(cart *model.Cart) error {
		q, ok := cart.Decrement(productID)
		if !ok {
			return ErrNotFoundInCart
		}
		qty = q
		return nil
	})
	if errors.Is(err, ErrNotFoundInCart) {
		return CartQuantityResponse{}, ErrNotFoundInCart
	}
	if err != nil {
		return CartQuantityResponse{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	return CartQuantityResponse{ProductID: productID, Quantity: qty}, nil
}

// Remove は行削除。無くても成功（冪等）。
func (u *CartUsecase) Remove(ctx context.Context, token string, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	_, err := u.carts.Mutate(ctx, token, func(cart *model.Cart) error {
		cart.Remove(productID)
		return nil
	})
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "session store error")
	}
	return nil
}

// View はカートの表示用データを作る。カートは変更しない。
func (u *CartUsecase) View(ctx context.Context, token string) (CartResponse, error) {
	cart, err := u.carts.Find(ctx, token)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}

	items := make([]CartLineResponse, 0, len(cart.Lines))
	var total int64 = 0

	for _, line := range cart.Lines {
		p, err := u.products.FindByID(ctx, line.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			// カート投入後に消えた商品は表示から落とす
			continue
		}
		if err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		sub := p.Price * line.Quantity
		items = append(items, CartLineResponse{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
			Subtotal:  sub,
		})
		total += sub
	}

	return CartResponse{Items: items, Total: total}, nil
}

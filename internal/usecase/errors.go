package usecase

import (
	"errors"
	"fmt"
)

// ドメインエラー。handlerのwriteErrorでステータスとメッセージに変換する。
var (
	// 非公開・販売停止の商品
	ErrNotSellable = errors.New("product cannot be sold")
	// 在庫不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// 空カートで確定しようとした
	ErrEmptyCart = errors.New("cart is empty")
	// カートに無い商品を増減しようとした
	ErrNotFoundInCart = errors.New("not in the cart")
)

// ステータスを直接指定したいときに使う
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

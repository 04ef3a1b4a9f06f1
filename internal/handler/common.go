package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのエラーをHTTPレスポンスに変換する。
// ドメインエラーは利用者向けメッセージ付きの4xx、それ以外は500。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrNotSellable):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "this product cannot be sold"})
	case errors.Is(err, usecase.ErrInsufficientStock):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "not enough stock for this product"})
	case errors.Is(err, usecase.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "your cart is empty"})
	case errors.Is(err, usecase.ErrNotFoundInCart):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "not in the cart"})
	case errors.Is(err, repo.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, repo.ErrProtected):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "still referenced"})
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

func getSessionToken(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxSessionToken)
	if v == nil {
		return "", false
	}

	token, ok := v.(string)
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// ドメインエラー→ステータスとメッセージの対応表
func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not sellable", usecase.ErrNotSellable, http.StatusBadRequest, "this product cannot be sold"},
		{"insufficient stock", usecase.ErrInsufficientStock, http.StatusBadRequest, "not enough stock for this product"},
		{"empty cart", usecase.ErrEmptyCart, http.StatusBadRequest, "your cart is empty"},
		{"not in cart", usecase.ErrNotFoundInCart, http.StatusBadRequest, "not in the cart"},
		{"not found", repo.ErrNotFound, http.StatusNotFound, "not found"},
		{"protected", repo.ErrProtected, http.StatusConflict, "still referenced"},
		{"http error passthrough", usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized"), http.StatusUnauthorized, "unauthorized"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t)

			assert.NoError(t, writeError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
		})
	}
}

// ラップされたドメインエラーも対応表で拾う
func TestWriteError_WrappedError(t *testing.T) {
	c, rec := newTestContext(t)

	wrapped := errors.Join(errors.New("context"), usecase.ErrInsufficientStock)
	assert.NoError(t, writeError(c, wrapped))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserIDFromContext(t *testing.T) {
	c, _ := newTestContext(t)

	_, ok := getUserIDFromContext(c)
	assert.False(t, ok)

	c.Set(middleware.CtxUserIDKey, int64(7))
	id, ok := getUserIDFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	//型違いは拾わない
	c.Set(middleware.CtxUserIDKey, "7")
	_, ok = getUserIDFromContext(c)
	assert.False(t, ok)
}

func TestGetSessionToken(t *testing.T) {
	c, _ := newTestContext(t)

	_, ok := getSessionToken(c)
	assert.False(t, ok)

	c.Set(middleware.CtxSessionToken, "tok")
	token, ok := getSessionToken(c)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)

	c.Set(middleware.CtxSessionToken, "")
	_, ok = getSessionToken(c)
	assert.False(t, ok)
}

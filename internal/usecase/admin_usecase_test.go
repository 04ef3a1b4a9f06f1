package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) DeleteWithItems(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func newAdminUsecase(products *ProductRepoMock, users *UserRepoMock, orders *OrderRepoMock) *usecase.AdminUsecase {
	return usecase.NewAdminUsecase(products, users, orders, testLog())
}

func TestAdminUsecase_CreateProduct(t *testing.T) {
	ctx := context.Background()
	products := new(ProductRepoMock)
	uc := newAdminUsecase(products, new(UserRepoMock), new(OrderRepoMock))

	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Beans" && p.Price == 1000 && p.Stock == 10 && p.IsActive
	})).Return(model.Product{ID: 1, Name: "Beans", Price: 1000, Stock: 10, IsActive: true}, nil)

	out, err := uc.CreateProduct(ctx, usecase.AdminProductInput{
		Name: " Beans ", Price: 1000, Stock: 10, IsActive: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	products.AssertExpectations(t)
}

func TestAdminUsecase_CreateProduct_Validation(t *testing.T) {
	ctx := context.Background()
	products := new(ProductRepoMock)
	uc := newAdminUsecase(products, new(UserRepoMock), new(OrderRepoMock))

	cases := []usecase.AdminProductInput{
		{Name: "", Price: 1000, Stock: 10},
		{Name: "Beans", Price: -1, Stock: 10},
		{Name: "Beans", Price: 1000, Stock: -1},
	}
	for _, in := range cases {
		_, err := uc.CreateProduct(ctx, in)
		he, ok := usecase.AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Status)
	}
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUsecase_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	products := new(ProductRepoMock)
	uc := newAdminUsecase(products, new(UserRepoMock), new(OrderRepoMock))

	products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Beans", Price: 1000, IsActive: true}, nil)
	products.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.ID == 1 && p.Name == "Dark Beans" && p.Price == 1200 && !p.IsActive
	})).Return(nil)

	err := uc.UpdateProduct(ctx, 1, usecase.AdminProductInput{
		Name: "Dark Beans", Price: 1200, IsActive: false,
	})
	assert.NoError(t, err)
	products.AssertExpectations(t)
}

func TestAdminUsecase_UpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	products := new(ProductRepoMock)
	uc := newAdminUsecase(products, new(UserRepoMock), new(OrderRepoMock))

	products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	err := uc.UpdateProduct(ctx, 99, usecase.AdminProductInput{Name: "Beans"})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

// 注文明細から参照されている商品はErrProtectedのまま通す（handlerで409になる）
func TestAdminUsecase_DeleteProduct_Protected(t *testing.T) {
	ctx := context.Background()
	products := new(ProductRepoMock)
	uc := newAdminUsecase(products, new(UserRepoMock), new(OrderRepoMock))

	products.On("SoftDelete", mock.Anything, int64(1)).Return(repo.ErrProtected)

	err := uc.DeleteProduct(ctx, 1)
	assert.ErrorIs(t, err, repo.ErrProtected)
}

func TestAdminUsecase_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	products := new(ProductRepoMock)
	uc := newAdminUsecase(products, new(UserRepoMock), new(OrderRepoMock))

	products.On("SoftDelete", mock.Anything, int64(1)).Return(nil)

	assert.NoError(t, uc.DeleteProduct(ctx, 1))
	products.AssertExpectations(t)
}

// 注文が残っている会員も同じく消せない
func TestAdminUsecase_DeleteUser_Protected(t *testing.T) {
	ctx := context.Background()
	users := new(UserRepoMock)
	uc := newAdminUsecase(new(ProductRepoMock), users, new(OrderRepoMock))

	users.On("Delete", mock.Anything, int64(1)).Return(repo.ErrProtected)

	err := uc.DeleteUser(ctx, 1)
	assert.ErrorIs(t, err, repo.ErrProtected)
}

func TestAdminUsecase_DeleteUser(t *testing.T) {
	ctx := context.Background()
	users := new(UserRepoMock)
	uc := newAdminUsecase(new(ProductRepoMock), users, new(OrderRepoMock))

	users.On("Delete", mock.Anything, int64(1)).Return(nil)

	assert.NoError(t, uc.DeleteUser(ctx, 1))
	users.AssertExpectations(t)
}

// 注文削除は明細ごと（DeleteWithItems経由）
func TestAdminUsecase_DeleteOrder(t *testing.T) {
	ctx := context.Background()
	orders := new(OrderRepoMock)
	uc := newAdminUsecase(new(ProductRepoMock), new(UserRepoMock), orders)

	orders.On("DeleteWithItems", mock.Anything, int64(5)).Return(nil)

	assert.NoError(t, uc.DeleteOrder(ctx, 5))
	orders.AssertExpectations(t)
}

func TestAdminUsecase_DeleteOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	orders := new(OrderRepoMock)
	uc := newAdminUsecase(new(ProductRepoMock), new(UserRepoMock), orders)

	orders.On("DeleteWithItems", mock.Anything, int64(99)).Return(repo.ErrNotFound)

	err := uc.DeleteOrder(ctx, 99)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAdminUsecase_InvalidID(t *testing.T) {
	ctx := context.Background()
	uc := newAdminUsecase(new(ProductRepoMock), new(UserRepoMock), new(OrderRepoMock))

	for _, err := range []error{
		uc.DeleteProduct(ctx, 0),
		uc.DeleteUser(ctx, -1),
		uc.DeleteOrder(ctx, 0),
	} {
		he, ok := usecase.AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Status)
	}
}

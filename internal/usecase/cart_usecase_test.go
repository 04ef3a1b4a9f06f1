package usecase_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// テスト用の部品
// =====================

// CartStoreのインメモリ版。Mutateの意味（fnエラー時は書かない）も再現する。
type fakeCartStore struct {
	mu    sync.Mutex
	carts map[string]model.Cart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string]model.Cart{}}
}

func (s *fakeCartStore) Find(ctx context.Context, token string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[token], nil
}

func (s *fakeCartStore) Mutate(ctx context.Context, token string, fn func(cart *model.Cart) error) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[token]
	if err := fn(&cart); err != nil {
		return model.Cart{}, err
	}
	s.carts[token] = cart
	return cart, nil
}

func (s *fakeCartStore) Clear(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, token)
	return nil
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func sellableProduct(id int64, stock int64) model.Product {
	return model.Product{
		ID:       id,
		Name:     gofakeit.ProductName(),
		Price:    int64(gofakeit.Number(100, 10000)),
		Stock:    stock,
		IsActive: true,
	}
}

// =====================
// Add
// =====================

func TestCartUsecase_Add_Success(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	products.On("FindByID", mock.Anything, int64(1)).Return(sellableProduct(1, 5), nil)

	out, err := uc.Add(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Quantity)

	//2回目は加算
	out, err = uc.Add(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Quantity)
}

func TestCartUsecase_Add_NotSellable(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	p := sellableProduct(1, 5)
	p.IsActive = false
	products.On("FindByID", mock.Anything, int64(1)).Return(p, nil)

	_, err := uc.Add(ctx, "tok", 1)
	assert.ErrorIs(t, err, usecase.ErrNotSellable)

	//カートは触っていない
	cart, _ := store.Find(ctx, "tok")
	assert.True(t, cart.IsEmpty())
}

func TestCartUsecase_Add_ZeroStock(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	products.On("FindByID", mock.Anything, int64(1)).Return(sellableProduct(1, 0), nil)

	_, err := uc.Add(ctx, "tok", 1)
	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)

	cart, _ := store.Find(ctx, "tok")
	assert.True(t, cart.IsEmpty())
}

func TestCartUsecase_Add_ProductMissing(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.Add(ctx, "tok", 99)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

// =====================
// Increment / Decrement
// =====================

func TestCartUsecase_Increment_Missing(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	uc := usecase.NewCartUsecase(store, new(ProductRepoMock), testLog())

	_, err := uc.Increment(ctx, "tok", 42)
	assert.ErrorIs(t, err, usecase.ErrNotFoundInCart)
}

func TestCartUsecase_Decrement_Missing(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	uc := usecase.NewCartUsecase(store, new(ProductRepoMock), testLog())

	_, err := uc.Decrement(ctx, "tok", 42)
	assert.ErrorIs(t, err, usecase.ErrNotFoundInCart)
}

func TestCartUsecase_IncrementThenDecrement(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	products.On("FindByID", mock.Anything, int64(1)).Return(sellableProduct(1, 10), nil)

	_, err := uc.Add(ctx, "tok", 1)
	assert.NoError(t, err)

	out, err := uc.Increment(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Quantity)

	out, err = uc.Decrement(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Quantity)
}

// 0まで減らすと行ごと消える
func TestCartUsecase_DecrementToZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	products.On("FindByID", mock.Anything, int64(1)).Return(sellableProduct(1, 10), nil)

	_, err := uc.Add(ctx, "tok", 1)
	assert.NoError(t, err)

	out, err := uc.Decrement(ctx, "tok", 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Quantity)

	cart, _ := store.Find(ctx, "tok")
	assert.True(t, cart.IsEmpty())

	//消えた後の減算はNotFoundInCart
	_, err = uc.Decrement(ctx, "tok", 1)
	assert.ErrorIs(t, err, usecase.ErrNotFoundInCart)
}

// =====================
// Remove / View
// =====================

func TestCartUsecase_Remove_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	products.On("FindByID", mock.Anything, int64(1)).Return(sellableProduct(1, 10), nil)

	_, err := uc.Add(ctx, "tok", 1)
	assert.NoError(t, err)

	assert.NoError(t, uc.Remove(ctx, "tok", 1))
	assert.NoError(t, uc.Remove(ctx, "tok", 1)) //2回目も成功

	cart, _ := store.Find(ctx, "tok")
	assert.True(t, cart.IsEmpty())
}

func TestCartUsecase_View_TotalsAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	p1 := model.Product{ID: 1, Name: "Beans", Price: 1000, Stock: 10, IsActive: true}
	p2 := model.Product{ID: 2, Name: "Mug", Price: 500, Stock: 10, IsActive: true}
	products.On("FindByID", mock.Anything, int64(1)).Return(p1, nil)
	products.On("FindByID", mock.Anything, int64(2)).Return(p2, nil)

	_, err := uc.Add(ctx, "tok", 1)
	assert.NoError(t, err)
	_, err = uc.Add(ctx, "tok", 2)
	assert.NoError(t, err)
	_, err = uc.Increment(ctx, "tok", 2)
	assert.NoError(t, err)

	out, err := uc.View(ctx, "tok")
	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, int64(1), out.Items[0].ProductID) //追加順
	assert.Equal(t, int64(2), out.Items[1].ProductID)
	assert.Equal(t, int64(2), out.Items[1].Quantity)
	assert.Equal(t, int64(1000+500*2), out.Total)
}

// カート投入後に消えた商品は表示から落ちる
func TestCartUsecase_View_SkipsVanishedProduct(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	products := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(store, products, testLog())

	products.On("FindByID", mock.Anything, int64(1)).Return(sellableProduct(1, 10), nil).Once()

	_, err := uc.Add(ctx, "tok", 1)
	assert.NoError(t, err)

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{}, repo.ErrNotFound)

	out, err := uc.View(ctx, "tok")
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)
}

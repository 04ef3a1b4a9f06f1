package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/events"
	"app/internal/metrics"
	repo "app/internal/repository"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// 注文一覧は5件ずつ
const ordersPerPage = 5

// 確定後のカート削除のやり直し回数
const cartClearRetries = 3

// OrderUsecase はカート→注文の確定と注文の参照・キャンセルを担当する。
// 確定は1トランザクション（all-or-nothing）。途中で在庫が足りなければ
// 注文も明細も全部ロールバックし、部分的な注文は絶対に残さない。
type OrderUsecase struct {
	tx        repo.TransactionManager
	carts     repo.CartStore
	publisher events.Publisher
	metrics   *metrics.OrderMetrics
	log       *logrus.Entry
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	carts repo.CartStore,
	publisher events.Publisher,
	m *metrics.OrderMetrics,
	log *logrus.Entry,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		carts:     carts,
		publisher: publisher,
		metrics:   m,
		log:       log,
	}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Discount  string `json:"discount"`
}

type OrderOutput struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	Status     string            `json:"status"`
	TotalPrice int64             `json:"total_price"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Orders  []OrderOutput `json:"orders"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// PlaceOrder はセッションカートを注文に変換する。
//  1. カートが空ならErrEmptyCart（注文は作らない）
//  2. トランザクション内で、カートの追加順に在庫を再チェックしつつ減算
//     （確定時点の在庫で判定する。カート投入時の在庫は信用しない）
//  3. 明細は現在価格のスナップショットを持つ
//  4. どれか1つでも在庫不足なら全体をロールバック
//  5. 成功したときだけカートを空にし、OrderPlacedイベントを流す
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, token string) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	start := time.Now()

	cart, err := u.carts.Find(ctx, token)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "session store error")
	}
	if cart.IsEmpty() {
		u.metrics.OrderFailed("empty_cart")
		return OrderOutput{}, ErrEmptyCart
	}

	var created model.Order
	var orderItems []model.OrderItem

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderItems = make([]model.OrderItem, 0, len(cart.Lines))
		var total int64 = 0
		now := time.Now()

		//カートの追加順のまま明細を組み立てる
		for _, line := range cart.Lines {
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.CanBeSold() {
				return ErrNotSellable
			}

			//在庫減算（stock >= qty の条件付きUPDATE、足りないならfalse）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return ErrInsufficientStock
			}

			//スナップショット
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           line.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            line.Quantity,
				Discount:            decimal.Zero,
				CreatedAt:           now,
			})

			total += p.Price * line.Quantity
		}

		//注文作成
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:     userID,
			Status:     model.OrderStatusCreated,
			TotalPrice: total,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created = model.Order{
			ID:         orderID,
			UserID:     userID,
			Status:     model.OrderStatusCreated,
			TotalPrice: total,
			CreatedAt:  now,
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientStock):
			u.metrics.OrderFailed("out_of_stock")
		case errors.Is(err, ErrNotSellable):
			u.metrics.OrderFailed("not_sellable")
		default:
			u.metrics.OrderFailed("error")
		}
		return OrderOutput{}, err
	}

	//成功したときだけカートを空にする。
	//確定済みの行が残ると再確定で二重注文になるので、消えるまで数回粘る。
	var clearErr error
	for i := 0; i < cartClearRetries; i++ {
		if clearErr = u.carts.Clear(ctx, token); clearErr == nil {
			break
		}
	}
	if clearErr != nil {
		u.log.WithError(clearErr).WithField("order_id", created.ID).
			Error("cart clear failed after order placement, cart may still hold purchased lines")
	}

	u.publisher.OrderPlaced(ctx, created, orderItems, true)
	u.metrics.OrderPlaced(time.Since(start))

	u.log.WithFields(logrus.Fields{
		"order_id": created.ID,
		"user_id":  userID,
		"total":    created.TotalPrice,
		"items":    len(orderItems),
	}).Info("order placed")

	return toOrderOutput(created, orderItems), nil
}

// ListMyOrders は自分の注文だけを5件ずつ返す。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page <= 0 {
		page = 1
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, ordersPerPage)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{
			Orders:  outs,
			Total:   total,
			Page:    page,
			PerPage: ordersPerPage,
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// GetMyOrderDetail は自分の注文の詳細。他人の注文は「存在しない扱い」。
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// CancelOrder はどの状態からでもCANCELEDにする（ガードなし）。
// 更新としてイベントも流す（created=false）。
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var canceled model.Order
	var items []model.OrderItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCanceled); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err = r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = model.OrderStatusCanceled
		canceled = o
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	u.publisher.OrderPlaced(ctx, canceled, items, false)
	u.metrics.OrderCanceled()

	u.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"user_id":  userID,
	}).Info("order canceled")

	return toOrderOutput(canceled, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	return OrderOutput{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
		Items: lo.Map(items, func(it model.OrderItem, _ int) OrderItemOutput {
			return OrderItemOutput{
				ProductID: it.ProductID,
				Name:      it.ProductNameSnapshot,
				Price:     it.UnitPriceSnapshot,
				Quantity:  it.Quantity,
				Discount:  it.Discount.StringFixed(2),
			}
		}),
	}
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。
// 価格は「確定時点のスナップショット」を保存し、商品の現在価格とは切り離す。
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64           `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	Discount            decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"discount"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

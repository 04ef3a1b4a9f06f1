package repository

import "context"

// 在庫の増減。truthはproducts.stock列。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算（stock >= qty を条件に1クエリで減らす）。
	// 足りなければfalse。同時確定の競合はこの条件更新で弾く。
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
}

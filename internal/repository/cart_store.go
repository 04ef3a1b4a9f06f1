package repository

import (
	"app/internal/domain/model"
	"context"
)

// セッショントークン単位のカート保管庫。
// Mutateはそのトークンのカートだけを対象にしたロック付き更新で、
// fnが返したカートを保存する。fnがエラーなら何も書かない。
type CartStore interface {
	Find(ctx context.Context, token string) (model.Cart, error)
	Mutate(ctx context.Context, token string, fn func(cart *model.Cart) error) (model.Cart, error)
	Clear(ctx context.Context, token string) error
}

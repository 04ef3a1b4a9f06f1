package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// cart:{session_token} -> Cart(JSON)
const cartKeyFormat = "cart:%s"

// 放置カートの寿命
const cartTTL = 30 * 24 * time.Hour

// WATCH更新が競合し続けたとき
var ErrCartConflict = errors.New("cart update conflict")

const cartMutateRetries = 5

// セッショントークン単位のカート保管庫（Redis実装）。
// 同一セッションからの同時更新はWATCHの楽観ロックで直列化する。
type CartRedisStore struct {
	rdb *redis.Client
}

func NewCartRedisStore(rdb *redis.Client) *CartRedisStore {
	return &CartRedisStore{rdb: rdb}
}

func cartKey(token string) string {
	return fmt.Sprintf(cartKeyFormat, token)
}

// カート取得。キーが無ければ空カート（エラーではない）。
func (s *CartRedisStore) Find(ctx context.Context, token string) (model.Cart, error) {
	data, err := s.rdb.Get(ctx, cartKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, nil
	}
	if err != nil {
		return model.Cart{}, err
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// 読み→fn→書きをWATCH付きで行う。
// fnがエラーを返したら何も書かずにそのまま返す。
// 他リクエストに割り込まれたら読み直してやり直す。
func (s *CartRedisStore) Mutate(ctx context.Context, token string, fn func(cart *model.Cart) error) (model.Cart, error) {
	key := cartKey(token)
	var out model.Cart

	txf := func(tx *redis.Tx) error {
		var cart model.Cart

		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if err := json.Unmarshal(data, &cart); err != nil {
				return err
			}
		}

		if err := fn(&cart); err != nil {
			return err
		}

		encoded, err := json.Marshal(cart)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, cartTTL)
			return nil
		})
		if err != nil {
			return err
		}

		out = cart
		return nil
	}

	for i := 0; i < cartMutateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return model.Cart{}, err
	}

	return model.Cart{}, ErrCartConflict
}

// カートを空にする（注文確定の成功時のみ呼ばれる）
func (s *CartRedisStore) Clear(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, cartKey(token)).Err()
}

package model

// セッションカートの1行
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// セッション単位のカート。RedisにJSONで保存する値オブジェクト。
// 追加順を保つためmapではなくスライスで持つ。
// 行が無い＝カートに入っていない（数量0の行は作らない）。
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// 商品の数量を返す（無ければfalse）
func (c Cart) Quantity(productID int64) (int64, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity, true
		}
	}
	return 0, false
}

func (c Cart) indexOf(productID int64) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// 追加（無ければ1で作成、あれば+1）
func (c *Cart) Add(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: 1})
}

// 数量+1。行が無ければfalse。
func (c *Cart) Increment(productID int64) (int64, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return 0, false
	}
	c.Lines[i].Quantity++
	return c.Lines[i].Quantity, true
}

// 数量-1。行が無ければfalse。0になったら行ごと消す。
func (c *Cart) Decrement(productID int64) (int64, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return 0, false
	}
	c.Lines[i].Quantity--
	if c.Lines[i].Quantity <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return 0, true
	}
	return c.Lines[i].Quantity, true
}

// 行削除（無くてもエラーにしない）
func (c *Cart) Remove(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

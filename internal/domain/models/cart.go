package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine - одна позиция корзины. На один товар в корзине владельца приходится не больше одной позиции
type CartLine struct {
	ID        int64           `json:"id"`
	OwnerID   string          `json:"-"`
	ProductID int64           `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"` // цена на момент добавления
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Subtotal возвращает стоимость позиции без округления
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart - содержимое корзины с вычисленными итогами
type Cart struct {
	Items     []CartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// NewCart считает итоговую сумму (до 2 знаков) и общее количество единиц товара
func NewCart(items []CartLine) Cart {
	if items == nil {
		items = []CartLine{}
	}
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.Subtotal())
		count += item.Quantity
	}
	return Cart{
		Items:     items,
		Total:     total.Round(2),
		ItemCount: count,
	}
}

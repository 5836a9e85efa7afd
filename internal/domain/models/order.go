package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusCompleted - статус заказа по умолчанию
const OrderStatusCompleted = "completed"

// Order - неизменяемая запись об оформленном заказе
type Order struct {
	ID            int64           `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OrderItem - копия позиции корзины на момент оформления заказа
type OrderItem struct {
	ProductID int64           `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// Receipt - ответ клиенту сразу после оформления заказа
type Receipt struct {
	OrderNumber   string          `json:"orderNumber"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Timestamp     time.Time       `json:"timestamp"`
	Status        string          `json:"status"`
}

// OrderItemFromLine копирует позицию корзины в позицию заказа
func OrderItemFromLine(l CartLine) OrderItem {
	return OrderItem{
		ProductID: l.ProductID,
		Title:     l.Title,
		Price:     l.Price,
		Quantity:  l.Quantity,
		Image:     l.Image,
	}
}

// OrderTotal считает сумму заказа и округляет её до 2 знаков (half away from zero)
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}

// Receipt строит чек по заказу
func (o *Order) Receipt() *Receipt {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	return &Receipt{
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         items,
		Total:         o.Total,
		Timestamp:     o.CreatedAt,
		Status:        o.Status,
	}
}

package models

import "github.com/shopspring/decimal"

// Product представляет товар каталога; структура повторяет ответ внешнего API
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating - рейтинг товара во внешнем каталоге
type Rating struct {
	Rate  decimal.Decimal `json:"rate"`
	Count int             `json:"count"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Rating      float64         `json:"rating"`
	Related     []string        `json:"related,omitempty"`
}

type CartLineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category,omitempty"`
	Rating   float64         `json:"rating,omitempty"`
	Quantity int             `json:"quantity"`
}

func NewLineItem(p Product, quantity int) CartLineItem {
	return CartLineItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
		Rating:   p.Rating,
		Quantity: quantity,
	}
}

// LineTotal is price * quantity without rounding.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type UserSession struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type ChatMessage struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

type StorageEntry struct {
	Profile   string    `gorm:"primaryKey;size:64"        json:"profile"`
	Key       string    `gorm:"primaryKey;column:storage_key;size:64" json:"key"`
	Value     []byte    `gorm:"not null"                  json:"value"`
	UpdatedAt time.Time `gorm:"not null"                  json:"updated_at"`
}

func (StorageEntry) TableName() string {
	return "storage_entries"
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentPayPal PaymentMethod = "paypal"
)

// OrderDraft is built once per submission attempt and never persisted.
type OrderDraft struct {
	OrderID       string         `json:"order_id"`
	Customer      Customer       `json:"customer"`
	Items         []CartLineItem `json:"items"`
	Totals        Totals         `json:"totals"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	CreatedAt     time.Time      `json:"created_at"`
}

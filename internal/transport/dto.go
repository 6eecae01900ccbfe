package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductListResponse struct {
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
	Items []models.Product `json:"items"`
}

type ProductDetailResponse struct {
	Product models.Product   `json:"product"`
	Related []models.Product `json:"related"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type CartResponse struct {
	Items        []models.CartLineItem `json:"items"`
	Count        int                   `json:"count"`
	Total        decimal.Decimal       `json:"total"`
	TotalDisplay string                `json:"total_display"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CheckoutResponse struct {
	Items      []models.CartLineItem  `json:"items"`
	Totals     checkout.DisplayTotals `json:"totals"`
	Submitting bool                   `json:"submitting"`
}

type ValidateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type ValidateFieldResponse struct {
	Field string `json:"field"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type ValidationErrorResponse struct {
	Message string               `json:"message"`
	Errors  checkout.FieldErrors `json:"errors"`
}

type ChatResponse struct {
	State    string               `json:"state"`
	Messages []models.ChatMessage `json:"messages"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SendMessageResponse struct {
	Reply    models.ChatMessage   `json:"reply"`
	Messages []models.ChatMessage `json:"messages"`
}

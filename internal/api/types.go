package api

import (
	"time"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
)

// Business is the public profile behind a store.
type Business struct {
	ID           string                `json:"_id"`
	Name         string                `json:"name"`
	StoreLink    string                `json:"storeLink,omitempty"`
	LogoURL      string                `json:"logoUrl,omitempty"`
	Phone        string                `json:"phone,omitempty"`
	Address      string                `json:"address,omitempty"`
	OpeningHours []domain.OpeningHours `json:"openingHours,omitempty"`
	PaymentInfo  []domain.PaymentInfo  `json:"paymentInfo,omitempty"`
}

// StoreInput creates or updates a store or branch.
type StoreInput struct {
	Name        string  `json:"name"`
	StoreLink   string  `json:"storeLink,omitempty"`
	Address     string  `json:"address,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	ParentStore string  `json:"parentStore,omitempty"`
	LogoURL     string  `json:"logoUrl,omitempty"`
	Description string  `json:"description,omitempty"`
	DeliveryFee float64 `json:"deliveryFee,omitempty"`
}

// Manager is a team member with access to a store.
type Manager struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ManagerInput invites a manager to a store.
type ManagerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is a customer order placed at a store.
type Order struct {
	ID            string      `json:"_id"`
	OrderNumber   string      `json:"orderNumber,omitempty"`
	StoreID       string      `json:"storeId,omitempty"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus,omitempty"`
	TotalAmount   float64     `json:"totalAmount"`
	CustomerName  string      `json:"customerName,omitempty"`
	CustomerPhone string      `json:"customerPhone,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// TransferRequest pays out a wallet balance to a bank account.
type TransferRequest struct {
	StoreID       string  `json:"storeId"`
	Amount        float64 `json:"amount"`
	AccountNumber string  `json:"accountNumber"`
	BankCode      string  `json:"bankCode"`
	AccountName   string  `json:"accountName,omitempty"`
	Narration     string  `json:"narration,omitempty"`
}

// Variant is a priced option of a product.
type Variant struct {
	ID    string  `json:"_id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock,omitempty"`
}

// Addon is an optional extra sold with a product.
type Addon struct {
	ID    string  `json:"_id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Product is a catalog entry.
type Product struct {
	ID          string    `json:"_id,omitempty"`
	StoreID     string    `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category,omitempty"`
	Images      []string  `json:"images,omitempty"`
	InStock     bool      `json:"inStock"`
	Variants    []Variant `json:"variants,omitempty"`
	Addons      []Addon   `json:"addons,omitempty"`
}

// Discount is a promotion scoped to a business.
type Discount struct {
	ID         string     `json:"_id,omitempty"`
	BusinessID string     `json:"businessId"`
	Code       string     `json:"code"`
	Type       string     `json:"type"`
	Value      float64    `json:"value"`
	Active     bool       `json:"active"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
	EndsAt     *time.Time `json:"endsAt,omitempty"`
}

package models

import "github.com/google/uuid"

// Order is a local denormalized copy of a COD order submitted to Shopify.
// The authoritative record lives on the platform; this copy exists for the
// merchant panel and analytics, so a failed insert never blocks the response.
type Order struct {
	BaseModel
	ShopID          uuid.UUID `gorm:"type:uuid;index" json:"shop_id"`
	Shop            *Shop     `json:"shop,omitempty"`
	OrderID         string    `gorm:"uniqueIndex" json:"order_id"`
	OrderNumber     string    `json:"order_number"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerAddress string    `json:"customer_address"`
	CustomerCity    string    `json:"customer_city"`
	CustomerCountry string    `json:"customer_country"`
	CustomerZip     string    `json:"customer_zip"`
	PaymentMethod   string    `json:"payment_method"`
	CodPaymentType  string    `json:"cod_payment_type"`
	OrderStatus     string    `json:"order_status"`
	TotalAmount     float64   `json:"total_amount"`
}

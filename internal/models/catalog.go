package models

import "time"

// CatalogService is a global catalog entry a business may offer.
type CatalogService struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Category   string    `db:"category" json:"category"`
	FloorPrice float64   `db:"floor_price" json:"floor_price"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CatalogAddon is a global add-on entry.
type CatalogAddon struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Price     float64   `db:"price" json:"price"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BusinessService is the junction row marking a catalog service as configured
// for a business, with its business-specific price and delivery type.
type BusinessService struct {
	ID           string    `db:"id" json:"id"`
	BusinessID   string    `db:"business_id" json:"business_id"`
	ServiceID    string    `db:"service_id" json:"service_id"`
	Price        *float64  `db:"price" json:"price,omitempty"`
	DeliveryType *string   `db:"delivery_type" json:"delivery_type,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ConfiguredService is a catalog service joined with its junction row for one
// business, used by the eligibility fallback path.
type ConfiguredService struct {
	CatalogService
	BusinessPrice *float64 `db:"business_price" json:"business_price,omitempty"`
	DeliveryType  *string  `db:"delivery_type" json:"delivery_type,omitempty"`
}

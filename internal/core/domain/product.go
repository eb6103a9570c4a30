package domain

import "time"

// Category groups catalog products.
type Category string

const (
	CategoryBaju      Category = "Baju"
	CategoryCelana    Category = "Celana"
	CategoryAksesoris Category = "Aksesoris"
	CategoryJaket     Category = "Jaket"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryBaju, CategoryCelana, CategoryAksesoris, CategoryJaket}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Image is an opaque reference to an uploaded file.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Price     float64   `json:"price"`
	Color     string    `json:"color"`
	Category  Category  `json:"category,omitempty"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package model

import "time"

// Product represents an apparel item in the catalogue.
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	Images      []string  `json:"images" db:"images"`
	Sizes       []string  `json:"sizes" db:"sizes"`
	Colors      []string  `json:"colors" db:"colors"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// FirstImage returns the primary catalogue image, if any.
func (p Product) FirstImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

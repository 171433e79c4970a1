package models

import (
	"slices"
	"time"
)

// Category is one of the fixed catalog sections.
type Category string

const (
	CategoryUpperBody   Category = "upper_body"
	CategoryPants       Category = "pants"
	CategorySkirts      Category = "skirts"
	CategoryAccessories Category = "accessories"
	CategoryMakeup      Category = "makeup"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryUpperBody,
	CategoryPants,
	CategorySkirts,
	CategoryAccessories,
	CategoryMakeup,
}

var categoryLabels = map[Category]string{
	CategoryUpperBody:   "Upper Body",
	CategoryPants:       "Pants",
	CategorySkirts:      "Skirts",
	CategoryAccessories: "Accessories",
	CategoryMakeup:      "Makeup",
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Product represents a product in the store.
type Product struct {
	ID             string    `json:"id" gorm:"column:product_id;primaryKey;type:varchar(12)"`
	Name           string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=1,max=100"`
	Price          float64   `json:"price" gorm:"not null" validate:"required,gt=0"`
	Category       Category  `json:"category" gorm:"type:varchar(32);index;not null" validate:"required,category"`
	Description    string    `json:"description" validate:"omitempty,max=1000"`
	Images         []string  `json:"images" gorm:"serializer:json"`
	Colors         []string  `json:"colors" gorm:"serializer:json" validate:"dive,required"`
	Sizes          []string  `json:"sizes" gorm:"serializer:json" validate:"dive,required"`
	AvailableUnits int       `json:"available_units" gorm:"not null;default:0;check:available_units >= 0" validate:"gte=0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasColor reports whether color can be ordered for p. A product without a
// color list accepts any value.
func (p *Product) HasColor(color string) bool {
	return len(p.Colors) == 0 || slices.Contains(p.Colors, color)
}

// HasSize is HasColor for sizes.
func (p *Product) HasSize(size string) bool {
	return len(p.Sizes) == 0 || slices.Contains(p.Sizes, size)
}

package models

import "time"

// Product is a market's stock of one item.
type Product struct {
	ID            uint      `gorm:"primaryKey"              json:"id"`
	Name          string    `gorm:"size:150;not null;index" json:"name"`
	Description   string    `gorm:"type:text"               json:"description"`
	Quantity      int       `gorm:"not null"                json:"quantity"`
	Unit          string    `gorm:"size:20;not null"        json:"unit"`
	Price         float64   `gorm:"not null;default:0"      json:"price"`
	PriceType     string    `gorm:"size:30;not null"        json:"priceType"`
	Category      string    `gorm:"size:20;not null;index"  json:"category"`
	Available     bool      `gorm:"not null;index"          json:"available"`
	SASProgram    bool      `gorm:"column:sas_program"      json:"sasProgram"`
	Image         *string   `gorm:"size:500"                json:"image"`
	Images        []string  `gorm:"type:text;serializer:json" json:"images"`
	MarketID      uint      `gorm:"not null;index"          json:"marketId"`
	BaseProductID *uint     `gorm:"index"                   json:"baseProductId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Market      *Market      `json:"market,omitempty"`
	BaseProduct *ProductBase `gorm:"foreignKey:BaseProductID" json:"baseProduct,omitempty"`
	Comments    []Comment    `json:"-"`
}

// ProductBase is a catalogue template many products may reference.
type ProductBase struct {
	ID        uint      `gorm:"primaryKey"                json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Image     *string   `gorm:"size:500"                  json:"image"`
	Category  string    `gorm:"size:20;not null;index"    json:"category"`
	Nutrition string    `gorm:"type:text"                 json:"nutrition"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Products []Product `gorm:"foreignKey:BaseProductID" json:"-"`
}

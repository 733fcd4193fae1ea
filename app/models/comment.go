package models

import "time"

// Comment is a rated review of a product. MarketID is copied from the
// product when the comment is written.
type Comment struct {
	ID        uint      `gorm:"primaryKey"        json:"id"`
	Rating    int       `gorm:"not null"          json:"rating"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Recommend bool      `json:"recommend"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	Dislikes  int       `gorm:"not null;default:0" json:"dislikes"`
	UserID    uint      `gorm:"not null;index"    json:"userId"`
	ProductID uint      `gorm:"not null;index"    json:"productId"`
	MarketID  uint      `gorm:"not null;index"    json:"marketId"`
	CreatedAt time.Time `gorm:"index"             json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User    *User    `json:"-"`
	Product *Product `json:"-"`
	Market  *Market  `json:"-"`
}

// All lists every model in dependency order, for migrations and tests.
func All() []interface{} {
	return []interface{}{&User{}, &ProductBase{}, &Market{}, &Schedule{}, &Product{}, &Comment{}}
}

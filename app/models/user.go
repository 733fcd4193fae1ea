package models

import "time"

// User is an account: a consumer, a market manager or an admin.
type User struct {
	ID        uint      `gorm:"primaryKey"                            json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null"          json:"username"`
	Password  string    `gorm:"size:255;not null"                     json:"-"` // bcrypt hash
	Name      string    `gorm:"size:120"                              json:"name"`
	Role      string    `gorm:"size:20;not null;default:consumer;index" json:"role"`
	Avatar    *string   `gorm:"size:500"                              json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Market *Market `gorm:"foreignKey:ManagerID" json:"market,omitempty"`
}

// DisplayName prefers the full name over the username.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

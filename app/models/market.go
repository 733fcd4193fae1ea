package models

import "time"

// Market is a physical market. ManagerID is unique, so a manager runs at
// most one market and a market has at most one manager.
type Market struct {
	ID               uint      `gorm:"primaryKey"            json:"id"`
	Name             string    `gorm:"size:150;not null;index" json:"name"`
	Location         string    `gorm:"size:255;not null"     json:"location"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Description      string    `gorm:"type:text"             json:"description"`
	LegalBeneficiary *string   `gorm:"size:255"              json:"legalBeneficiary"`
	Image            *string   `gorm:"size:500"              json:"image"`
	ManagerID        *uint     `gorm:"uniqueIndex"           json:"managerId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Manager   *User      `gorm:"foreignKey:ManagerID" json:"-"`
	Schedules []Schedule `json:"schedules,omitempty"`
	Products  []Product  `json:"products,omitempty"`
}

// Schedule is one day of a market's opening hours. Times are HH:MM.
type Schedule struct {
	ID        uint      `gorm:"primaryKey"        json:"id"`
	MarketID  uint      `gorm:"not null;index"    json:"marketId"`
	Day       string    `gorm:"size:12;not null"  json:"day"`
	OpenTime  string    `gorm:"size:5"            json:"openTime"`
	CloseTime string    `gorm:"size:5"            json:"closeTime"`
	Closed    bool      `json:"closed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

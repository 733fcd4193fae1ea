package services

import (
	"github.com/agromap/agromap/app/models"
)

// MarketRef is the short form of a market embedded in other payloads.
type MarketRef struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

func refOf(m *models.Market) MarketRef {
	if m == nil {
		return MarketRef{}
	}
	return MarketRef{ID: m.ID, Name: m.Name, Location: m.Location}
}

// MarketView is a market as the API returns it.
type MarketView struct {
	models.Market
	ProductCount int64  `json:"productCount"`
	ManagerName  string `json:"managerName,omitempty"`
}

// ProductView is a product with its rating aggregates. Markets is filled
// only by the category listing.
type ProductView struct {
	models.Product
	AverageRating *float64    `json:"averageRating"`
	CommentCount  int         `json:"commentCount"`
	Markets       []MarketRef `json:"markets,omitempty"`
}

// ProductDetail adds the rating distribution and the comments.
type ProductDetail struct {
	ProductView
	RatingDistribution [5]RatingBucket `json:"ratingDistribution"`
	Comments           []CommentView   `json:"comments"`
}

// Author is the public face of a comment's writer.
type Author struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
}

// CommentView is a comment with its author and, in user and admin
// listings, the product and market names.
type CommentView struct {
	models.Comment
	Author      *Author `json:"user,omitempty"`
	ProductName string  `json:"productName,omitempty"`
	MarketName  string  `json:"marketName,omitempty"`
}

func commentView(c models.Comment) CommentView {
	v := CommentView{Comment: c}
	if c.User != nil {
		v.Author = &Author{ID: c.User.ID, Username: c.User.Username, Name: c.User.DisplayName(), Avatar: c.User.Avatar}
	}
	if c.Product != nil {
		v.ProductName = c.Product.Name
	}
	if c.Market != nil {
		v.MarketName = c.Market.Name
	}
	return v
}

// BaseView is a catalogue entry with how widely it is stocked.
type BaseView struct {
	models.ProductBase
	ProductCount int64 `json:"productCount"`
	MarketCount  int64 `json:"marketCount"`
}

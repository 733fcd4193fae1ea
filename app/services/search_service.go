package services

import (
	"context"
	"strings"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
)

// SearchLimit caps each result list.
const SearchLimit = 5

// SearchResult holds products and markets matched independently.
type SearchResult struct {
	Products []models.Product `json:"products"`
	Markets  []models.Market  `json:"markets"`
}

type SearchService struct {
	products *repositories.ProductRepository
	markets  *repositories.MarketRepository
}

func NewSearchService(products *repositories.ProductRepository, markets *repositories.MarketRepository) *SearchService {
	return &SearchService{products: products, markets: markets}
}

// Search matches q case-insensitively as a substring. A blank q is invalid.
func (s *SearchService) Search(ctx context.Context, q string) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("Search query is required")
	}
	products, err := s.products.Search(ctx, q, SearchLimit)
	if err != nil {
		return nil, err
	}
	markets, err := s.markets.Search(ctx, q, SearchLimit)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Products: products, Markets: markets}, nil
}

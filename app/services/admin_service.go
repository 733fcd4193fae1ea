package services

import (
	"context"
	"time"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/cache"
)

const statsTTL = 60 * time.Second

// UserCounts breaks the user total down by role.
type UserCounts struct {
	Total     int64 `json:"total"`
	Consumers int64 `json:"consumers"`
	Managers  int64 `json:"managers"`
	Admins    int64 `json:"admins"`
}

// AdminStats is the platform overview.
type AdminStats struct {
	Users             UserCounts `json:"users"`
	Markets           int64      `json:"markets"`
	Products          int64      `json:"products"`
	AvailableProducts int64      `json:"availableProducts"`
	ProductBases      int64      `json:"productBases"`
	Comments          int64      `json:"comments"`
	AverageRating     *float64   `json:"averageRating"`
}

type AdminService struct {
	users    *repositories.UserRepository
	markets  *repositories.MarketRepository
	products *repositories.ProductRepository
	bases    *repositories.ProductBaseRepository
	comments *repositories.CommentRepository
	cache    cache.Store
}

func NewAdminService(
	users *repositories.UserRepository,
	markets *repositories.MarketRepository,
	products *repositories.ProductRepository,
	bases *repositories.ProductBaseRepository,
	comments *repositories.CommentRepository,
	store cache.Store,
) *AdminService {
	return &AdminService{users: users, markets: markets, products: products, bases: bases, comments: comments, cache: store}
}

// Stats counts everything on the platform. Results are cached briefly.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	return cache.Remember(ctx, s.cache, CacheKeyAdminStats, statsTTL, func() (*AdminStats, error) {
		return s.compute(ctx)
	})
}

func (s *AdminService) compute(ctx context.Context) (*AdminStats, error) {
	var (
		stats AdminStats
		err   error
	)

	roles, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	stats.Users = UserCounts{
		Consumers: roles[models.RoleConsumer],
		Managers:  roles[models.RoleManager],
		Admins:    roles[models.RoleAdmin],
	}
	for _, n := range roles {
		stats.Users.Total += n
	}

	if stats.Markets, err = s.markets.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Products, err = s.products.Count(ctx, false); err != nil {
		return nil, err
	}
	if stats.AvailableProducts, err = s.products.Count(ctx, true); err != nil {
		return nil, err
	}
	if stats.ProductBases, err = s.bases.Count(ctx); err != nil {
		return nil, err
	}

	summary, err := s.comments.SummaryAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.Comments = summary.Count
	stats.AverageRating = summary.AverageRating
	return &stats, nil
}

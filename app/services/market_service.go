package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/cache"
	"github.com/agromap/agromap/pkg/collection"
)

const marketsTTL = 5 * time.Minute

// MarketInput is the body of PUT /api/market/edit. An empty image keeps the
// current one.
type MarketInput struct {
	Name             string          `json:"name"             validate:"required,max=150"`
	Location         string          `json:"location"         validate:"required,max=255"`
	Latitude         float64         `json:"latitude"         validate:"gte=-90,lte=90"`
	Longitude        float64         `json:"longitude"        validate:"gte=-180,lte=180"`
	Description      string          `json:"description"      validate:"max=5000"`
	LegalBeneficiary string          `json:"legalBeneficiary" validate:"max=255"`
	Image            string          `json:"image"            validate:"omitempty,url,max=500"`
	Schedules        []ScheduleInput `json:"schedules"        validate:"max=7,unique=Day,dive"`
}

// ScheduleInput is one opening-hours row. Times are required unless the
// market is closed that day.
type ScheduleInput struct {
	Day       string `json:"day"       validate:"required,day"`
	OpenTime  string `json:"openTime"  validate:"required_if=Closed false,omitempty,datetime=15:04"`
	CloseTime string `json:"closeTime" validate:"required_if=Closed false,omitempty,datetime=15:04"`
	Closed    bool   `json:"closed"`
}

type MarketService struct {
	markets  *repositories.MarketRepository
	products *repositories.ProductRepository
	cache    cache.Store
	events   Publisher
}

func NewMarketService(
	markets *repositories.MarketRepository,
	products *repositories.ProductRepository,
	store cache.Store,
	events Publisher,
) *MarketService {
	return &MarketService{markets: markets, products: products, cache: store, events: events}
}

// List returns every market with its schedules and product count.
func (s *MarketService) List(ctx context.Context) ([]MarketView, error) {
	return cache.Remember(ctx, s.cache, CacheKeyMarkets, marketsTTL, func() ([]MarketView, error) {
		markets, err := s.markets.All(ctx)
		if err != nil {
			return nil, err
		}
		counts, err := s.markets.ProductCounts(ctx)
		if err != nil {
			return nil, err
		}
		return collection.Map(markets, func(m models.Market) MarketView {
			return MarketView{Market: m, ProductCount: counts[m.ID]}
		}), nil
	})
}

// Get returns one market with its manager's display name.
func (s *MarketService) Get(ctx context.Context, id uint) (*MarketView, error) {
	market, err := s.markets.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Market")
	}
	return s.view(ctx, market)
}

// Mine returns the caller's market with schedules and products.
func (s *MarketService) Mine(ctx context.Context, managerID uint) (*MarketView, error) {
	market, err := s.markets.FindByManager(ctx, managerID)
	if err != nil {
		return nil, lookup(err, "Market")
	}
	return &MarketView{Market: *market, ProductCount: int64(len(market.Products))}, nil
}

// Save creates the caller's market on first call and updates it after.
// Schedules are always replaced by in.Schedules.
// Validate normalises in and checks it without touching the store.
func (s *MarketService) Validate(in *MarketInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	return check(*in)
}

func (s *MarketService) Save(ctx context.Context, managerID uint, in MarketInput) (*MarketView, error) {
	if err := s.Validate(&in); err != nil {
		return nil, err
	}

	market, err := s.markets.FindByManager(ctx, managerID)
	if errors.Is(err, repositories.ErrNotFound) {
		market = &models.Market{ManagerID: &managerID}
	} else if err != nil {
		return nil, err
	}

	market.Name = in.Name
	market.Location = in.Location
	market.Latitude = in.Latitude
	market.Longitude = in.Longitude
	market.Description = strings.TrimSpace(in.Description)
	market.LegalBeneficiary = optional(in.LegalBeneficiary)
	if in.Image != "" {
		market.Image = &in.Image
	}

	schedules := collection.Map(in.Schedules, func(si ScheduleInput) models.Schedule {
		sc := models.Schedule{Day: si.Day, Closed: si.Closed}
		if !si.Closed {
			sc.OpenTime, sc.CloseTime = si.OpenTime, si.CloseTime
		}
		return sc
	})
	if err := s.markets.Save(ctx, market, schedules); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("You already manage a market")
		}
		return nil, err
	}
	s.events.Fire(EventMarketChanged, market.ID)
	return s.view(ctx, market)
}

// DeleteMine deletes the caller's market.
func (s *MarketService) DeleteMine(ctx context.Context, managerID uint) error {
	id, err := s.markets.IDForManager(ctx, managerID)
	if err != nil {
		return lookup(err, "Market")
	}
	return s.Delete(ctx, id)
}

// Delete removes a market while it lists no products.
func (s *MarketService) Delete(ctx context.Context, id uint) error {
	err := s.markets.Delete(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrInUse):
		return conflict("Market still has products; delete them first")
	case err != nil:
		return lookup(err, "Market")
	}
	s.events.Fire(EventMarketChanged, id)
	return nil
}

func (s *MarketService) view(ctx context.Context, m *models.Market) (*MarketView, error) {
	count, err := s.products.CountInMarket(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	v := &MarketView{Market: *m, ProductCount: count}
	if m.Manager != nil {
		v.ManagerName = m.Manager.DisplayName()
	}
	return v, nil
}

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/auth"
)

// ProfileInput is the body of PUT /api/user/profile. Nil fields are left
// unchanged; a password change needs the current password.
type ProfileInput struct {
	Name            *string `json:"name"            validate:"omitnil,max=120"`
	Avatar          *string `json:"avatar"          validate:"omitnil,max=500"`
	CurrentPassword string  `json:"currentPassword" validate:"required_with=NewPassword"`
	NewPassword     string  `json:"newPassword"     validate:"omitempty,min=6,max=72"`
}

// RoleInput is the body of PUT /api/admin/users/{id}.
type RoleInput struct {
	Role string `json:"role" validate:"required,role"`
}

// UserStats summarises a user's activity. Market is set for managers who
// run one.
type UserStats struct {
	Comments           int64        `json:"comments"`
	AverageRatingGiven *float64     `json:"averageRatingGiven"`
	Recommendations    int64        `json:"recommendations"`
	LikesReceived      int64        `json:"likesReceived"`
	DislikesReceived   int64        `json:"dislikesReceived"`
	Market             *MarketStats `json:"market,omitempty"`
}

// MarketStats summarises the comments on a manager's market.
type MarketStats struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Products      int64    `json:"products"`
	Comments      int64    `json:"comments"`
	AverageRating *float64 `json:"averageRating"`
}

type UserService struct {
	users    *repositories.UserRepository
	markets  *repositories.MarketRepository
	products *repositories.ProductRepository
	comments *repositories.CommentRepository
	events   Publisher
}

func NewUserService(
	users *repositories.UserRepository,
	markets *repositories.MarketRepository,
	products *repositories.ProductRepository,
	comments *repositories.CommentRepository,
	events Publisher,
) *UserService {
	return &UserService{users: users, markets: markets, products: products, comments: comments, events: events}
}

func (s *UserService) Profile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "User")
	}
	return user, nil
}

// UpdateProfile changes name, avatar and password. A wrong current password
// fails with ErrInvalidCredentials.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "User")
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Avatar != nil {
		fields["avatar"] = optional(*in.Avatar)
	}
	if in.NewPassword != "" {
		if !auth.CheckPassword(user.Password, in.CurrentPassword) {
			return nil, &Error{Kind: ErrInvalidCredentials, Message: "Current password is incorrect"}
		}
		hash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if len(fields) > 0 {
		if err := s.users.Update(ctx, id, fields); err != nil {
			return nil, lookup(err, "User")
		}
	}
	return s.Profile(ctx, id)
}

// Stats aggregates the comments a user wrote and, for managers, the
// comments their market received.
func (s *UserService) Stats(ctx context.Context, id uint, role string) (*UserStats, error) {
	own, err := s.comments.SummaryByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := &UserStats{
		Comments:           own.Count,
		AverageRatingGiven: own.AverageRating,
		Recommendations:    own.Recommendations,
		LikesReceived:      own.Likes,
		DislikesReceived:   own.Dislikes,
	}
	if role != models.RoleManager {
		return stats, nil
	}

	market, err := s.markets.FindByManager(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	received, err := s.comments.SummaryByMarket(ctx, market.ID)
	if err != nil {
		return nil, err
	}
	stats.Market = &MarketStats{
		ID:            market.ID,
		Name:          market.Name,
		Products:      int64(len(market.Products)),
		Comments:      received.Count,
		AverageRating: received.AverageRating,
	}
	return stats, nil
}

// List returns every user with the market they manage.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

// ChangeRole sets a user's role. Admins cannot demote themselves; a
// manager moved to another role gives up their market.
func (s *UserService) ChangeRole(ctx context.Context, actorID, id uint, in RoleInput) (*models.User, error) {
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := check(in); err != nil {
		return nil, err
	}
	if id == actorID && in.Role != models.RoleAdmin {
		return nil, invalid("You cannot change your own role")
	}
	if err := s.users.UpdateRole(ctx, id, in.Role); err != nil {
		return nil, lookup(err, "User")
	}
	s.events.Fire(EventMarketChanged, id)
	return s.Profile(ctx, id)
}

// Delete removes a user and their comments and releases their market.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if id == actorID {
		return invalid("You cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return lookup(err, "User")
	}
	s.events.Fire(EventMarketChanged, id)
	return nil
}

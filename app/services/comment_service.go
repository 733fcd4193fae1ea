package services

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/collection"
	"github.com/agromap/agromap/pkg/metrics"
)

// stripHTML removes every tag; comments are plain text.
var stripHTML = bluemonday.StrictPolicy()

// CommentInput is the body of POST /api/comments.
type CommentInput struct {
	ProductID uint   `json:"productId" validate:"required"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"   validate:"required,max=2000"`
	Recommend bool   `json:"recommend"`
}

// VoteInput is the body of POST /api/comments/{id}/vote.
type VoteInput struct {
	Type string `json:"type" validate:"required,oneof=like dislike"`
}

// VoteResult carries a comment's counters after a vote.
type VoteResult struct {
	ID       uint `json:"id"`
	Likes    int  `json:"likes"`
	Dislikes int  `json:"dislikes"`
}

type CommentService struct {
	comments *repositories.CommentRepository
	products *repositories.ProductRepository
	events   Publisher
}

func NewCommentService(comments *repositories.CommentRepository, products *repositories.ProductRepository, events Publisher) *CommentService {
	return &CommentService{comments: comments, products: products, events: events}
}

// ForProduct returns a product's comments, newest first.
func (s *CommentService) ForProduct(ctx context.Context, productID uint) ([]CommentView, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, lookup(err, "Product")
	}
	comments, err := s.comments.ForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return collection.Map(comments, commentView), nil
}

// Create stores a comment by userID. The rating is clamped and the market
// is copied from the product.
func (s *CommentService) Create(ctx context.Context, userID uint, in CommentInput) (*CommentView, error) {
	in.Content = strings.TrimSpace(stripHTML.Sanitize(in.Content))
	if err := check(in); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, lookup(err, "Product")
	}

	comment := &models.Comment{
		Rating:    ClampRating(in.Rating),
		Content:   in.Content,
		Recommend: in.Recommend,
		UserID:    userID,
		ProductID: product.ID,
		MarketID:  product.MarketID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	saved, err := s.comments.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	view := commentView(*saved)
	view.ProductName = product.Name
	if product.Market != nil {
		view.MarketName = product.Market.Name
	}
	metrics.CommentsCreated.Inc()
	s.events.Fire(EventCommentCreated, view)
	return &view, nil
}

// Vote adds one like or dislike. Repeated votes all count.
func (s *CommentService) Vote(ctx context.Context, id uint, in VoteInput) (*VoteResult, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	column := repositories.VoteLike
	if in.Type == "dislike" {
		column = repositories.VoteDislike
	}
	comment, err := s.comments.Vote(ctx, id, column)
	if err != nil {
		return nil, lookup(err, "Comment")
	}
	return &VoteResult{ID: comment.ID, Likes: comment.Likes, Dislikes: comment.Dislikes}, nil
}

// ByUser returns userID's comments with product and market names.
func (s *CommentService) ByUser(ctx context.Context, userID uint) ([]CommentView, error) {
	comments, err := s.comments.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return collection.Map(comments, commentView), nil
}

func (s *CommentService) All(ctx context.Context) ([]CommentView, error) {
	comments, err := s.comments.All(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Map(comments, commentView), nil
}

func (s *CommentService) Delete(ctx context.Context, id uint) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		return lookup(err, "Comment")
	}
	s.events.Fire(EventCommentDeleted, id)
	return nil
}

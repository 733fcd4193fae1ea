package repositories

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agromap/agromap/app/models"
)

// CommentRepository handles comments and the rating data derived from them.
type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func newestFirst(db *gorm.DB) *gorm.DB { return db.Order("created_at desc, id desc") }

// ForProduct returns a product's comments with their authors, newest first.
func (r *CommentRepository) ForProduct(ctx context.Context, productID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := newestFirst(r.db.WithContext(ctx)).Preload("User").
		Where("product_id = ?", productID).Find(&comments).Error
	return comments, err
}

// ByUser returns a user's comments with product and market, newest first.
func (r *CommentRepository) ByUser(ctx context.Context, userID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := newestFirst(r.db.WithContext(ctx)).Preload("Product").Preload("Market").
		Where("user_id = ?", userID).Find(&comments).Error
	return comments, err
}

// All returns every comment with author, product and market, newest first.
func (r *CommentRepository) All(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := newestFirst(r.db.WithContext(ctx)).
		Preload("User").Preload("Product").Preload("Market").
		Find(&comments).Error
	return comments, err
}

// FindByID returns a comment with its author.
func (r *CommentRepository) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Vote counters.
const (
	VoteLike    = "likes"
	VoteDislike = "dislikes"
)

// Vote increments one counter in a single UPDATE and returns the comment
// with its new counters.
func (r *CommentRepository) Vote(ctx context.Context, id uint, column string) (*models.Comment, error) {
	if column != VoteLike && column != VoteDislike {
		return nil, gorm.ErrInvalidField
	}
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// RatingsByProduct returns every rating of each given product.
func (r *CommentRepository) RatingsByProduct(ctx context.Context, productIDs []uint) (map[uint][]int, error) {
	out := make(map[uint][]int, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ProductID uint
		Rating    int
	}
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("product_id, rating").Where("product_id IN ?", productIDs).
		Scan(&rows).Error
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row.Rating)
	}
	return out, err
}

// Summary aggregates a set of comments.
type Summary struct {
	Count           int64
	AverageRating   *float64
	Recommendations int64
	Likes           int64
	Dislikes        int64
}

func (r *CommentRepository) summarize(q *gorm.DB) (Summary, error) {
	var row struct {
		Count           int64
		Average         sql.NullFloat64
		Recommendations sql.NullInt64
		Likes           sql.NullInt64
		Dislikes        sql.NullInt64
	}
	err := q.Model(&models.Comment{}).Select(
		"COUNT(*) AS count, AVG(rating) AS average, "+
			"SUM(CASE WHEN recommend = ? THEN 1 ELSE 0 END) AS recommendations, "+
			"SUM(likes) AS likes, SUM(dislikes) AS dislikes",
		true,
	).Scan(&row).Error

	s := Summary{
		Count:           row.Count,
		Recommendations: row.Recommendations.Int64,
		Likes:           row.Likes.Int64,
		Dislikes:        row.Dislikes.Int64,
	}
	if row.Average.Valid {
		avg := row.Average.Float64
		s.AverageRating = &avg
	}
	return s, err
}

// SummaryByUser aggregates the comments userID wrote.
func (r *CommentRepository) SummaryByUser(ctx context.Context, userID uint) (Summary, error) {
	return r.summarize(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// SummaryByMarket aggregates the comments on a market's products.
func (r *CommentRepository) SummaryByMarket(ctx context.Context, marketID uint) (Summary, error) {
	return r.summarize(r.db.WithContext(ctx).Where("market_id = ?", marketID))
}

// SummaryAll aggregates every comment.
func (r *CommentRepository) SummaryAll(ctx context.Context) (Summary, error) {
	return r.summarize(r.db.WithContext(ctx))
}

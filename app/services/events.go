package services

import "github.com/agromap/agromap/pkg/event"

// Events fired on the bus after successful writes.
const (
	EventCommentCreated = "comment.created" // payload: CommentView
	EventCommentDeleted = "comment.deleted" // payload: comment id
	EventMarketChanged  = "market.changed"  // payload: market id
	EventProductChanged = "product.changed" // payload: product id
	EventCatalogChanged = "catalog.changed" // payload: product base id
)

// Cache keys owned by services.
const (
	CacheKeyMarkets    = "agromap:markets:all"
	CacheKeyAdminStats = "agromap:admin:stats"
)

// Publisher is the subset of the event bus services fire into.
type Publisher interface {
	Fire(event string, payload interface{})
}

var _ Publisher = (*event.Bus)(nil)

type discard struct{}

func (discard) Fire(string, interface{}) {}

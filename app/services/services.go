package services

import (
	"gorm.io/gorm"

	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/pkg/auth"
	"github.com/agromap/agromap/pkg/cache"
	"github.com/agromap/agromap/pkg/storage"
)

// Deps is what the service layer needs from the outside world.
type Deps struct {
	DB             *gorm.DB
	Issuer         *auth.Issuer
	Cache          cache.Store
	Disk           storage.Disk
	Events         Publisher
	UploadFolder   string
	UploadMaxBytes int64
}

// Services holds every service, built over one shared database handle.
type Services struct {
	Auth     *AuthService
	Markets  *MarketService
	Products *ProductService
	Bases    *ProductBaseService
	Comments *CommentService
	Users    *UserService
	Admin    *AdminService
	Search   *SearchService
	Uploads  *UploadService
}

func New(d Deps) *Services {
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Events == nil {
		d.Events = discard{}
	}

	users := repositories.NewUserRepository(d.DB)
	markets := repositories.NewMarketRepository(d.DB)
	products := repositories.NewProductRepository(d.DB)
	bases := repositories.NewProductBaseRepository(d.DB)
	comments := repositories.NewCommentRepository(d.DB)

	return &Services{
		Auth:     NewAuthService(users, d.Issuer),
		Markets:  NewMarketService(markets, products, d.Cache, d.Events),
		Products: NewProductService(products, bases, markets, comments, d.Events),
		Bases:    NewProductBaseService(bases, products, d.Events),
		Comments: NewCommentService(comments, products, d.Events),
		Users:    NewUserService(users, markets, products, comments, d.Events),
		Admin:    NewAdminService(users, markets, products, bases, comments, d.Cache),
		Search:   NewSearchService(products, markets),
		Uploads:  NewUploadService(d.Disk, d.UploadFolder, d.UploadMaxBytes),
	}
}

package services_test

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/internal/testutil"
	"github.com/agromap/agromap/pkg/auth"
	"github.com/agromap/agromap/pkg/bind"
	"github.com/agromap/agromap/pkg/cache"
	"github.com/agromap/agromap/pkg/storage"
)

var ctx = context.Background()

type recorder struct{ events []string }

func (r *recorder) Fire(event string, _ interface{}) { r.events = append(r.events, event) }

type env struct {
	db       *gorm.DB
	events   *recorder
	auth     *services.AuthService
	markets  *services.MarketService
	products *services.ProductService
	bases    *services.ProductBaseService
	comments *services.CommentService
	users    *services.UserService
	admin    *services.AdminService
	search   *services.SearchService
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	rec := &recorder{}

	users := repositories.NewUserRepository(db)
	markets := repositories.NewMarketRepository(db)
	products := repositories.NewProductRepository(db)
	bases := repositories.NewProductBaseRepository(db)
	comments := repositories.NewCommentRepository(db)

	return &env{
		db:       db,
		events:   rec,
		auth:     services.NewAuthService(users, auth.NewIssuer("test-secret", time.Hour)),
		markets:  services.NewMarketService(markets, products, cache.Noop{}, rec),
		products: services.NewProductService(products, bases, markets, comments, rec),
		bases:    services.NewProductBaseService(bases, products, rec),
		comments: services.NewCommentService(comments, products, rec),
		users:    services.NewUserService(users, markets, products, comments, rec),
		admin:    services.NewAdminService(users, markets, products, bases, comments, cache.Noop{}),
		search:   services.NewSearchService(products, markets),
	}
}

func fieldErrors(t *testing.T, err error) services.FieldErrors {
	t.Helper()
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	return fe
}

func TestSignupDuplicateLeavesExistingUser(t *testing.T) {
	e := setup(t)

	user, err := e.auth.Signup(ctx, services.SignupInput{Username: "ana", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleConsumer, user.Role)

	_, err = e.auth.Signup(ctx, services.SignupInput{Username: "ana", Password: "other12", Role: "manager"})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = e.auth.Signup(ctx, services.SignupInput{Username: "root", Password: "secret1", Role: "admin"})
	assert.Contains(t, fieldErrors(t, err), "role")

	session, err := e.auth.Signin(ctx, services.SigninInput{Username: "ana", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, models.RoleConsumer, session.User.Role)

	_, err = e.auth.Signin(ctx, services.SigninInput{Username: "ana", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestCreateProductDefaultsAndValidation(t *testing.T) {
	e := setup(t)
	manager := testutil.User(t, e.db, "gestor", models.RoleManager)

	_, err := e.products.Create(ctx, manager.ID, services.ProductInput{Name: "Tomato", Quantity: 3})
	assert.ErrorIs(t, err, services.ErrInvalid, "no market yet")

	testutil.Market(t, e.db, "Central", manager)

	_, err = e.products.Create(ctx, manager.ID, services.ProductInput{Name: "Tomato", Quantity: 0})
	assert.Contains(t, fieldErrors(t, err), "quantity")

	created, err := e.products.Create(ctx, manager.ID, services.ProductInput{Name: "Tomato", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "kg", created.Unit)
	assert.Equal(t, "unidad", created.PriceType)
	assert.Equal(t, models.CategoryOtros, created.Category)
	assert.True(t, created.Available)
	assert.Contains(t, e.events.events, services.EventProductChanged)

	missing := uint(404)
	_, err = e.products.Create(ctx, manager.ID, services.ProductInput{Name: "Mango", Quantity: 1, BaseProductID: &missing})
	assert.Contains(t, fieldErrors(t, err), "baseProductId")

	base := testutil.Base(t, e.db, "Mango", models.CategoryFrutas)
	off := false
	mango, err := e.products.Create(ctx, manager.ID, services.ProductInput{
		Name: "Mango", Quantity: 1, BaseProductID: &base.ID, Available: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFrutas, mango.Category)
	assert.False(t, mango.Available)
}

func TestManagerCannotTouchForeignProducts(t *testing.T) {
	e := setup(t)
	ana := testutil.User(t, e.db, "ana", models.RoleManager)
	luis := testutil.User(t, e.db, "luis", models.RoleManager)
	testutil.Market(t, e.db, "Norte", ana)
	sur := testutil.Market(t, e.db, "Sur", luis)
	product := testutil.Product(t, e.db, "Papa", sur, nil)

	name := "Papa criolla"
	_, err := e.products.UpdateMine(ctx, ana.ID, product.ID, services.ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, e.products.DeleteMine(ctx, ana.ID, product.ID), services.ErrNotFound)

	updated, err := e.products.UpdateMine(ctx, luis.ID, product.ID, services.ProductUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Papa criolla", updated.Name)

	testutil.Comment(t, e.db, ana, product, 5)
	assert.ErrorIs(t, e.products.DeleteMine(ctx, luis.ID, product.ID), services.ErrConflict)
	assert.ErrorIs(t, e.products.Delete(ctx, product.ID), services.ErrConflict)
}

func TestProductDetailAggregates(t *testing.T) {
	e := setup(t)
	consumer := testutil.User(t, e.db, "ana", models.RoleConsumer)
	market := testutil.Market(t, e.db, "Central", nil)
	product := testutil.Product(t, e.db, "Papa", market, nil)

	detail, err := e.products.Detail(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.AverageRating)
	assert.Equal(t, 0, detail.CommentCount)
	assert.NotNil(t, detail.Comments)

	testutil.Comment(t, e.db, consumer, product, 5)
	testutil.Comment(t, e.db, consumer, product, 3)

	detail, err = e.products.Detail(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.AverageRating)
	assert.InDelta(t, 4.0, *detail.AverageRating, 0.001)
	assert.Equal(t, 2, detail.CommentCount)
	assert.Equal(t, 5, detail.RatingDistribution[0].Stars)
	assert.Equal(t, 50, detail.RatingDistribution[0].Percentage)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "ana", detail.Comments[0].Author.Username)

	_, err = e.products.Detail(ctx, 999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestByCategoryGroupsAcrossMarkets(t *testing.T) {
	e := setup(t)
	banana := testutil.Base(t, e.db, "Banano", models.CategoryFrutas)
	norte := testutil.Market(t, e.db, "Norte", nil)
	sur := testutil.Market(t, e.db, "Sur", nil)
	testutil.Product(t, e.db, "Banano criollo", norte, banana)
	testutil.Product(t, e.db, "Banano bocadillo", sur, banana)
	testutil.Product(t, e.db, "Papa", sur, nil)

	views, err := e.products.ByCategory(ctx, "frutas")
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Len(t, v.Markets, 2)
	}

	_, err = e.products.ByCategory(ctx, "dulces")
	assert.ErrorIs(t, err, services.ErrInvalid)
}

func TestProductBaseGuards(t *testing.T) {
	e := setup(t)
	base, err := e.bases.Create(ctx, services.BaseInput{Name: "Papa", Category: "tuberculos"})
	require.NoError(t, err)

	_, err = e.bases.Create(ctx, services.BaseInput{Name: "Papa", Category: "tuberculos"})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = e.bases.Create(ctx, services.BaseInput{Name: "Sal", Category: "minerales"})
	assert.Contains(t, fieldErrors(t, err), "category")

	market := testutil.Market(t, e.db, "Central", nil)
	testutil.Product(t, e.db, "Papa pastusa", market, base)

	list, err := e.bases.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, list[0].ProductCount)
	assert.EqualValues(t, 1, list[0].MarketCount)

	assert.ErrorIs(t, e.bases.Delete(ctx, base.ID), services.ErrConflict)
	assert.ErrorIs(t, e.bases.Delete(ctx, 999), services.ErrNotFound)
}

func TestCommentCreateSanitisesAndClamps(t *testing.T) {
	e := setup(t)
	consumer := testutil.User(t, e.db, "ana", models.RoleConsumer)
	market := testutil.Market(t, e.db, "Central", nil)
	product := testutil.Product(t, e.db, "Papa", market, nil)

	view, err := e.comments.Create(ctx, consumer.ID, services.CommentInput{
		ProductID: product.ID, Rating: 9, Content: "<script>alert(1)</script>Muy <b>buena</b>",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, view.Rating)
	assert.Equal(t, "Muy buena", view.Content)
	assert.Equal(t, market.ID, view.MarketID)
	assert.Equal(t, "Central", view.MarketName)
	assert.Contains(t, e.events.events, services.EventCommentCreated)

	_, err = e.comments.Create(ctx, consumer.ID, services.CommentInput{ProductID: product.ID, Rating: 3, Content: "<b></b>"})
	assert.Contains(t, fieldErrors(t, err), "content")

	_, err = e.comments.Create(ctx, consumer.ID, services.CommentInput{ProductID: 999, Rating: 3, Content: "hola"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	low, err := e.comments.Create(ctx, consumer.ID, services.CommentInput{ProductID: product.ID, Rating: -2, Content: "mala"})
	require.NoError(t, err)
	assert.Equal(t, 1, low.Rating)
}

func TestVoteCountsEveryVote(t *testing.T) {
	e := setup(t)
	consumer := testutil.User(t, e.db, "ana", models.RoleConsumer)
	market := testutil.Market(t, e.db, "Central", nil)
	comment := testutil.Comment(t, e.db, consumer, testutil.Product(t, e.db, "Papa", market, nil), 4)

	for i := 0; i < 2; i++ {
		_, err := e.comments.Vote(ctx, comment.ID, services.VoteInput{Type: "like"})
		require.NoError(t, err)
	}
	res, err := e.comments.Vote(ctx, comment.ID, services.VoteInput{Type: "dislike"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Likes)
	assert.Equal(t, 1, res.Dislikes)

	_, err = e.comments.Vote(ctx, comment.ID, services.VoteInput{Type: "love"})
	assert.Contains(t, fieldErrors(t, err), "type")
	_, err = e.comments.Vote(ctx, 999, services.VoteInput{Type: "like"})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestMarketSaveCreatesThenUpdates(t *testing.T) {
	e := setup(t)
	manager := testutil.User(t, e.db, "gestor", models.RoleManager)

	_, err := e.markets.Mine(ctx, manager.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	in := services.MarketInput{
		Name:     "Central",
		Location: "Bogotá",
		Schedules: []services.ScheduleInput{
			{Day: "lunes", OpenTime: "06:00", CloseTime: "14:00"},
			{Day: "domingo", Closed: true},
		},
	}
	created, err := e.markets.Save(ctx, manager.ID, in)
	require.NoError(t, err)
	assert.Len(t, created.Schedules, 2)

	in.Name = "Central Norte"
	in.Schedules = []services.ScheduleInput{{Day: "martes", OpenTime: "07:00", CloseTime: "13:00"}}
	updated, err := e.markets.Save(ctx, manager.ID, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	mine, err := e.markets.Mine(ctx, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, "Central Norte", mine.Name)
	require.Len(t, mine.Schedules, 1)
	assert.Equal(t, "martes", mine.Schedules[0].Day)

	in.Schedules = []services.ScheduleInput{{Day: "someday", OpenTime: "7am"}}
	errs := fieldErrors(t, func() error { _, err := e.markets.Save(ctx, manager.ID, in); return err }())
	assert.Contains(t, errs, "schedules[0].day")
	assert.Contains(t, errs, "schedules[0].openTime")
	assert.Contains(t, errs, "schedules[0].closeTime")

	testutil.Product(t, e.db, "Papa", &mine.Market, nil)
	assert.ErrorIs(t, e.markets.DeleteMine(ctx, manager.ID), services.ErrConflict)

	list, err := e.markets.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, list[0].ProductCount)
}

func TestUserAdministration(t *testing.T) {
	e := setup(t)
	admin := testutil.User(t, e.db, "root", models.RoleAdmin)
	manager := testutil.User(t, e.db, "gestor", models.RoleManager)
	market := testutil.Market(t, e.db, "Central", manager)

	_, err := e.users.ChangeRole(ctx, admin.ID, admin.ID, services.RoleInput{Role: "consumer"})
	assert.ErrorIs(t, err, services.ErrInvalid)
	assert.ErrorIs(t, e.users.Delete(ctx, admin.ID, admin.ID), services.ErrInvalid)

	demoted, err := e.users.ChangeRole(ctx, admin.ID, manager.ID, services.RoleInput{Role: "consumer"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleConsumer, demoted.Role)

	view, err := e.markets.Get(ctx, market.ID)
	require.NoError(t, err)
	assert.Nil(t, view.ManagerID)

	_, err = e.users.ChangeRole(ctx, admin.ID, manager.ID, services.RoleInput{Role: "owner"})
	assert.Contains(t, fieldErrors(t, err), "role")

	require.NoError(t, e.users.Delete(ctx, admin.ID, manager.ID))
	assert.ErrorIs(t, e.users.Delete(ctx, admin.ID, manager.ID), services.ErrNotFound)
}

func TestUpdateProfilePassword(t *testing.T) {
	e := setup(t)
	user := testutil.User(t, e.db, "ana", models.RoleConsumer)

	name := "Ana María"
	_, err := e.users.UpdateProfile(ctx, user.ID, services.ProfileInput{
		Name: &name, CurrentPassword: "wrong", NewPassword: "nuevo123",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	updated, err := e.users.UpdateProfile(ctx, user.ID, services.ProfileInput{
		Name: &name, CurrentPassword: "secret123", NewPassword: "nuevo123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)

	_, err = e.auth.Signin(ctx, services.SigninInput{Username: "ana", Password: "nuevo123"})
	assert.NoError(t, err)
}

func TestStats(t *testing.T) {
	e := setup(t)
	consumer := testutil.User(t, e.db, "ana", models.RoleConsumer)
	manager := testutil.User(t, e.db, "gestor", models.RoleManager)
	market := testutil.Market(t, e.db, "Central", manager)
	product := testutil.Product(t, e.db, "Papa", market, nil)
	testutil.Comment(t, e.db, consumer, product, 5)
	testutil.Comment(t, e.db, consumer, product, 2)

	own, err := e.users.Stats(ctx, consumer.ID, models.RoleConsumer)
	require.NoError(t, err)
	assert.EqualValues(t, 2, own.Comments)
	assert.EqualValues(t, 1, own.Recommendations)
	assert.Nil(t, own.Market)

	mgr, err := e.users.Stats(ctx, manager.ID, models.RoleManager)
	require.NoError(t, err)
	assert.EqualValues(t, 0, mgr.Comments)
	assert.Nil(t, mgr.AverageRatingGiven)
	require.NotNil(t, mgr.Market)
	assert.EqualValues(t, 1, mgr.Market.Products)
	assert.EqualValues(t, 2, mgr.Market.Comments)
	assert.InDelta(t, 3.5, *mgr.Market.AverageRating, 0.001)

	stats, err := e.admin.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Users.Total)
	assert.EqualValues(t, 1, stats.Users.Managers)
	assert.EqualValues(t, 1, stats.Markets)
	assert.EqualValues(t, 1, stats.AvailableProducts)
	assert.EqualValues(t, 2, stats.Comments)
}

func TestSearch(t *testing.T) {
	e := setup(t)
	market := testutil.Market(t, e.db, "Paloquemao", nil)
	testutil.Product(t, e.db, "Papa criolla", market, nil)

	_, err := e.search.Search(ctx, "   ")
	assert.ErrorIs(t, err, services.ErrInvalid)

	res, err := e.search.Search(ctx, "PA")
	require.NoError(t, err)
	assert.Len(t, res.Products, 1)
	assert.Len(t, res.Markets, 1)

	res, err = e.search.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, res.Products)
	assert.Empty(t, res.Markets)
}

func TestUploadResizesLargeImages(t *testing.T) {
	disk, err := storage.NewLocal(t.TempDir(), "http://localhost/storage")
	require.NoError(t, err)
	svc := services.NewUploadService(disk, "agromap", 5<<20)

	src := filepath.Join(t.TempDir(), "wide.png")
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2000, 100))))
	require.NoError(t, f.Close())
	info, err := os.Stat(src)
	require.NoError(t, err)

	up, err := svc.Upload(ctx, &bind.File{
		Field: "file", Filename: "wide.png", Path: src, Size: info.Size(),
		ContentType: "image/png", Extension: ".png",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^http://localhost/storage/agromap/[0-9a-f-]{36}\.png$`, up.URL)

	img, err := imaging.Open(filepath.Join(disk.Root(), up.Path))
	require.NoError(t, err)
	assert.Equal(t, services.MaxImageSide, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())

	_, err = svc.Upload(ctx, &bind.File{Path: src, Size: 10, ContentType: "text/plain", Extension: ".txt"})
	assert.ErrorIs(t, err, services.ErrInvalid)

	_, err = svc.Upload(ctx, &bind.File{Path: src, Size: 6 << 20, ContentType: "image/png", Extension: ".png"})
	assert.ErrorIs(t, err, services.ErrInvalid)
	require.NoError(t, svc.Discard(ctx, up))
	assert.NoFileExists(t, filepath.Join(disk.Root(), up.Path))
	assert.NoError(t, svc.Discard(ctx, nil))
}

package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/repositories"
	"github.com/agromap/agromap/internal/testutil"
)

var ctx = context.Background()

func TestUserCreateDuplicate(t *testing.T) {
	db := testutil.DB(t)
	users := repositories.NewUserRepository(db)

	require.NoError(t, users.Create(ctx, &models.User{Username: "ana", Password: "x", Role: models.RoleConsumer}))
	err := users.Create(ctx, &models.User{Username: "ana", Password: "y", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	u, err := users.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "x", u.Password)
	assert.Equal(t, models.RoleConsumer, u.Role)

	_, err = users.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRoleFollowsUpdates(t *testing.T) {
	db := testutil.DB(t)
	users := repositories.NewUserRepository(db)
	manager := testutil.User(t, db, "gestor", models.RoleManager)

	role, err := users.Role(ctx, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, role)

	require.NoError(t, users.UpdateRole(ctx, manager.ID, models.RoleConsumer))
	role, err = users.Role(ctx, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleConsumer, role)

	_, err = users.Role(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserDeleteReleasesMarketAndDropsComments(t *testing.T) {
	db := testutil.DB(t)
	manager := testutil.User(t, db, "gestor", models.RoleManager)
	market := testutil.Market(t, db, "Central", manager)
	product := testutil.Product(t, db, "Papa", market, nil)
	testutil.Comment(t, db, manager, product, 4)

	require.NoError(t, repositories.NewUserRepository(db).Delete(ctx, manager.ID))

	var reloaded models.Market
	require.NoError(t, db.First(&reloaded, market.ID).Error)
	assert.Nil(t, reloaded.ManagerID)

	var comments int64
	db.Model(&models.Comment{}).Count(&comments)
	assert.Zero(t, comments)
}

func TestMarketSaveReplacesSchedules(t *testing.T) {
	db := testutil.DB(t)
	markets := repositories.NewMarketRepository(db)

	market := &models.Market{Name: "Norte", Location: "Calle 1"}
	require.NoError(t, markets.Save(ctx, market, []models.Schedule{
		{Day: "lunes", OpenTime: "08:00", CloseTime: "14:00"},
		{Day: "martes", OpenTime: "08:00", CloseTime: "14:00"},
	}))
	require.NotZero(t, market.ID)

	market.Name = "Norte 2"
	require.NoError(t, markets.Save(ctx, market, []models.Schedule{{Day: "domingo", Closed: true}}))

	loaded, err := markets.FindByID(ctx, market.ID)
	require.NoError(t, err)
	assert.Equal(t, "Norte 2", loaded.Name)
	require.Len(t, loaded.Schedules, 1)
	assert.Equal(t, "domingo", loaded.Schedules[0].Day)
}

func TestMarketDeleteGuardedByProducts(t *testing.T) {
	db := testutil.DB(t)
	markets := repositories.NewMarketRepository(db)
	market := testutil.Market(t, db, "Sur", nil)
	product := testutil.Product(t, db, "Yuca", market, nil)

	assert.ErrorIs(t, markets.Delete(ctx, market.ID), repositories.ErrInUse)

	require.NoError(t, db.Delete(product).Error)
	require.NoError(t, markets.Delete(ctx, market.ID))
	assert.ErrorIs(t, markets.Delete(ctx, market.ID), repositories.ErrNotFound)
}

func TestProductScopedLookupAndDelete(t *testing.T) {
	db := testutil.DB(t)
	products := repositories.NewProductRepository(db)
	mine := testutil.Market(t, db, "Mío", nil)
	theirs := testutil.Market(t, db, "Ajeno", nil)
	foreign := testutil.Product(t, db, "Mango", theirs, nil)

	_, err := products.FindInMarket(ctx, foreign.ID, mine.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, products.Delete(ctx, foreign.ID, mine.ID), repositories.ErrNotFound)

	found, err := products.FindInMarket(ctx, foreign.ID, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ajeno", found.Market.Name)
}

func TestProductDeleteGuardedByComments(t *testing.T) {
	db := testutil.DB(t)
	products := repositories.NewProductRepository(db)
	user := testutil.User(t, db, "ana", models.RoleConsumer)
	market := testutil.Market(t, db, "Central", nil)
	product := testutil.Product(t, db, "Mora", market, nil)
	testutil.Comment(t, db, user, product, 5)

	assert.ErrorIs(t, products.Delete(ctx, product.ID, 0), repositories.ErrInUse)
}

func TestProductBaseDeleteGuard(t *testing.T) {
	db := testutil.DB(t)
	bases := repositories.NewProductBaseRepository(db)
	market := testutil.Market(t, db, "Central", nil)
	used := testutil.Base(t, db, "Fresa", models.CategoryFrutas)
	unused := testutil.Base(t, db, "Lulo", models.CategoryFrutas)
	testutil.Product(t, db, "Fresa roja", market, used)

	assert.ErrorIs(t, bases.Delete(ctx, used.ID), repositories.ErrInUse)
	assert.NoError(t, bases.Delete(ctx, unused.ID))

	err := bases.Create(ctx, &models.ProductBase{Name: "Fresa", Category: models.CategoryFrutas})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestUsageByBase(t *testing.T) {
	db := testutil.DB(t)
	a := testutil.Market(t, db, "A", nil)
	b := testutil.Market(t, db, "B", nil)
	base := testutil.Base(t, db, "Banano", models.CategoryFrutas)
	testutil.Product(t, db, "Banano criollo", a, base)
	testutil.Product(t, db, "Banano bocadillo", a, base)
	testutil.Product(t, db, "Banano", b, base)

	usage, err := repositories.NewProductRepository(db).UsageByBase(ctx)
	require.NoError(t, err)
	assert.Equal(t, repositories.BaseUsage{Products: 3, Markets: 2}, usage[base.ID])
}

func TestSearchIsCaseInsensitiveAndEscaped(t *testing.T) {
	db := testutil.DB(t)
	market := testutil.Market(t, db, "Plaza Paloquemao", nil)
	testutil.Product(t, db, "Tomate Chonto", market, nil)
	testutil.Product(t, db, "Tomate_100%", market, nil)

	products := repositories.NewProductRepository(db)
	found, err := products.Search(ctx, "TOMATE", 5)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = products.Search(ctx, "_100%", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Tomate_100%", found[0].Name)

	markets, err := repositories.NewMarketRepository(db).Search(ctx, "paloQUEMAO", 5)
	require.NoError(t, err)
	assert.Len(t, markets, 1)
}

func TestVoteIncrementsAtomically(t *testing.T) {
	db := testutil.DB(t)
	comments := repositories.NewCommentRepository(db)
	user := testutil.User(t, db, "ana", models.RoleConsumer)
	product := testutil.Product(t, db, "Mora", testutil.Market(t, db, "Central", nil), nil)
	c := testutil.Comment(t, db, user, product, 5)

	_, err := comments.Vote(ctx, c.ID, repositories.VoteLike)
	require.NoError(t, err)
	updated, err := comments.Vote(ctx, c.ID, repositories.VoteLike)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Likes)
	assert.Zero(t, updated.Dislikes)

	_, err = comments.Vote(ctx, 999, repositories.VoteDislike)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSummaries(t *testing.T) {
	db := testutil.DB(t)
	comments := repositories.NewCommentRepository(db)

	empty, err := comments.SummaryAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Nil(t, empty.AverageRating)

	user := testutil.User(t, db, "ana", models.RoleConsumer)
	product := testutil.Product(t, db, "Mora", testutil.Market(t, db, "Central", nil), nil)
	testutil.Comment(t, db, user, product, 5)
	testutil.Comment(t, db, user, product, 2)

	s, err := comments.SummaryByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Count)
	require.NotNil(t, s.AverageRating)
	assert.InDelta(t, 3.5, *s.AverageRating, 1e-9)
	assert.Equal(t, int64(1), s.Recommendations)

	ratings, err := comments.RatingsByProduct(ctx, []uint{product.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{5, 2}, ratings[product.ID])
}

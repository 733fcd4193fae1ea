package graphql_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agql "github.com/agromap/agromap/app/graphql"
	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/internal/testutil"
	gql "github.com/agromap/agromap/pkg/graphql"
)

func TestProductsQuery(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.User(t, db, "ana", models.RoleConsumer)
	market := testutil.Market(t, db, "Central", nil)
	papa := testutil.Product(t, db, "Papa", market, nil)
	testutil.Product(t, db, "Yuca", market, nil)
	testutil.Comment(t, db, user, papa, 4)

	svc := services.New(services.Deps{DB: db})
	schema, err := agql.Schema(svc.Markets, svc.Products)
	require.NoError(t, err)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ products(marketId: 1) { name averageRating commentCount market { name } } }`,
	})
	require.Empty(t, result.Errors)

	products := result.Data.(map[string]interface{})["products"].([]interface{})
	require.Len(t, products, 2)
	byName := map[string]map[string]interface{}{}
	for _, p := range products {
		row := p.(map[string]interface{})
		byName[row["name"].(string)] = row
	}
	assert.Equal(t, 4.0, byName["Papa"]["averageRating"])
	assert.Equal(t, 1, byName["Papa"]["commentCount"])
	assert.Nil(t, byName["Yuca"]["averageRating"])
	assert.Equal(t, "Central", byName["Papa"]["market"].(map[string]interface{})["name"])
}

func TestHandlerOverHTTP(t *testing.T) {
	db := testutil.DB(t)
	testutil.Market(t, db, "Central", nil)

	svc := services.New(services.Deps{DB: db})
	schema, err := agql.Schema(svc.Markets, svc.Products)
	require.NoError(t, err)
	h := gql.Handler(schema)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/graphql", strings.NewReader(`{"query":"{ markets { name productCount } }"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"markets":[{"name":"Central","productCount":0}]}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/graphql", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/graphql", strings.NewReader(`{"query":"{ market(id: 99) { name } }"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Market not found")
}

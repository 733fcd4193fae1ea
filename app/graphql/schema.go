// Package graphql exposes markets and products as a read-only GraphQL
// schema backed by the same services as the REST API.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/agromap/agromap/app/services"
	gql "github.com/agromap/agromap/pkg/graphql"
)

var marketType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Market",
	Fields: graphql.Fields{
		"id":               &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":             &graphql.Field{Type: graphql.String},
		"location":         &graphql.Field{Type: graphql.String},
		"latitude":         &graphql.Field{Type: graphql.Float},
		"longitude":        &graphql.Field{Type: graphql.Float},
		"description":      &graphql.Field{Type: graphql.String},
		"legalBeneficiary": &graphql.Field{Type: graphql.String},
		"image":            &graphql.Field{Type: graphql.String},
		"productCount":     &graphql.Field{Type: graphql.Int},
		"managerName":      &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":          &graphql.Field{Type: graphql.String},
		"description":   &graphql.Field{Type: graphql.String},
		"quantity":      &graphql.Field{Type: graphql.Int},
		"unit":          &graphql.Field{Type: graphql.String},
		"price":         &graphql.Field{Type: graphql.Float},
		"priceType":     &graphql.Field{Type: graphql.String},
		"category":      &graphql.Field{Type: graphql.String},
		"available":     &graphql.Field{Type: graphql.Boolean},
		"sasProgram":    &graphql.Field{Type: graphql.Boolean},
		"image":         &graphql.Field{Type: graphql.String},
		"marketId":      &graphql.Field{Type: graphql.Int},
		"market":        &graphql.Field{Type: marketType},
		"averageRating": &graphql.Field{Type: graphql.Float},
		"commentCount":  &graphql.Field{Type: graphql.Int},
	},
})

// Schema builds the query root over markets and products.
func Schema(markets *services.MarketService, products *services.ProductService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"markets": &graphql.Field{
				Type: graphql.NewList(marketType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := markets.List(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, len(list))
					for i, m := range list {
						out[i] = marketFields(m)
					}
					return out, nil
				},
			},
			"market": &graphql.Field{
				Type: marketType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, err := markets.Get(p.Context, uint(p.Args["id"].(int)))
					if err != nil {
						return nil, err
					}
					return marketFields(*m), nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"marketId": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var (
						list []services.ProductView
						err  error
					)
					switch {
					case p.Args["marketId"] != nil:
						list, err = products.ForMarket(p.Context, uint(p.Args["marketId"].(int)))
					case p.Args["category"] != nil:
						list, err = products.ByCategory(p.Context, p.Args["category"].(string))
					default:
						list, err = products.List(p.Context, false)
					}
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, len(list))
					for i, v := range list {
						out[i] = productFields(v)
					}
					return out, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					d, err := products.Detail(p.Context, uint(p.Args["id"].(int)))
					if err != nil {
						return nil, err
					}
					return productFields(d.ProductView), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

func marketFields(m services.MarketView) map[string]interface{} {
	return map[string]interface{}{
		"id":               int(m.ID),
		"name":             m.Name,
		"location":         m.Location,
		"latitude":         m.Latitude,
		"longitude":        m.Longitude,
		"description":      m.Description,
		"legalBeneficiary": m.LegalBeneficiary,
		"image":            m.Image,
		"productCount":     int(m.ProductCount),
		"managerName":      m.ManagerName,
	}
}

func productFields(v services.ProductView) map[string]interface{} {
	out := map[string]interface{}{
		"id":            int(v.ID),
		"name":          v.Name,
		"description":   v.Description,
		"quantity":      v.Quantity,
		"unit":          v.Unit,
		"price":         v.Price,
		"priceType":     v.PriceType,
		"category":      v.Category,
		"available":     v.Available,
		"sasProgram":    v.SASProgram,
		"image":         v.Image,
		"marketId":      int(v.MarketID),
		"averageRating": v.AverageRating,
		"commentCount":  v.CommentCount,
	}
	if v.Market != nil {
		out["market"] = marketFields(services.MarketView{Market: *v.Market})
	}
	return out
}

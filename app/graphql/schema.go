// Package graphql exposes the read side of the catalog as a GraphQL schema.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// NewSchema builds the catalog schema:
//
//	products(page, limit), product(id), searchProducts(query, page, limit),
//	newProducts, popularProducts(limit), suggestedProducts(userId), categories
func NewSchema(catalog *services.CatalogService, categories *services.CategoryService) (graphql.Schema, error) {
	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				switch c := p.Source.(type) {
				case models.Category:
					return c.ID, nil
				case *models.CategoryRef:
					return c.ID, nil
				}
				return nil, nil
			}},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	productFields := func(category graphql.Output, resolveCategory graphql.FieldResolveFn) graphql.Fields {
		return graphql.Fields{
			"id":          productField(graphql.NewNonNull(graphql.ID), func(p models.Product) interface{} { return p.ID }),
			"title":       productField(graphql.String, func(p models.Product) interface{} { return p.Title }),
			"description": productField(graphql.String, func(p models.Product) interface{} { return p.Description }),
			"price":       productField(graphql.Float, func(p models.Product) interface{} { return p.Price }),
			"images":      productField(graphql.NewList(graphql.String), func(p models.Product) interface{} { return p.Images }),
			"isAuction":   productField(graphql.Boolean, func(p models.Product) interface{} { return p.IsAuction }),
			"auctionLink": productField(graphql.String, func(p models.Product) interface{} { return p.AuctionLink }),
			"stock":       productField(graphql.Int, func(p models.Product) interface{} { return p.Stock }),
			"createdAt":   productField(graphql.String, func(p models.Product) interface{} { return p.CreatedAt.Format(timeLayout) }),
			"updatedAt":   productField(graphql.String, func(p models.Product) interface{} { return p.UpdatedAt.Format(timeLayout) }),
			"category":    &graphql.Field{Type: category, Resolve: resolveCategory},
		}
	}

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: productFields(graphql.ID, func(p graphql.ResolveParams) (interface{}, error) {
			if prod, ok := p.Source.(models.Product); ok {
				return prod.Category, nil
			}
			return nil, nil
		}),
	})

	productDetailType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductDetail",
		Fields: productFields(categoryType, func(p graphql.ResolveParams) (interface{}, error) {
			if d, ok := p.Source.(*models.ProductDetail); ok && d.Category != nil {
				return d.Category, nil
			}
			return nil, nil
		}),
	})

	productPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductPage",
		Fields: graphql.Fields{
			"total":    &graphql.Field{Type: graphql.Int},
			"page":     &graphql.Field{Type: graphql.Int},
			"limit":    &graphql.Field{Type: graphql.Int},
			"products": &graphql.Field{Type: graphql.NewList(productType)},
		},
	})

	paginationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchPagination",
		Fields: graphql.Fields{
			"currentPage":   &graphql.Field{Type: graphql.Int},
			"totalPages":    &graphql.Field{Type: graphql.Int},
			"totalProducts": &graphql.Field{Type: graphql.Int},
		},
	})

	searchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"products":   &graphql.Field{Type: graphql.NewList(productType)},
			"pagination": &graphql.Field{Type: paginationType},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: productPageType,
				Args: graphql.FieldConfigArgument{
					"page":  &graphql.ArgumentConfig{Type: graphql.Int},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return catalog.ListProducts(p.Context, intArg(p, "page"), intArg(p, "limit"))
				},
			},
			"product": &graphql.Field{
				Type: productDetailType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					d, err := catalog.GetProduct(p.Context, stringArg(p, "id"))
					if err != nil || d == nil {
						return nil, err
					}
					return d, nil
				},
			},
			"searchProducts": &graphql.Field{
				Type: searchType,
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.String},
					"page":  &graphql.ArgumentConfig{Type: graphql.Int},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return catalog.SearchProducts(p.Context, stringArg(p, "query"), intArg(p, "page"), intArg(p, "limit"))
				},
			},
			"newProducts": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return catalog.NewProducts(p.Context)
				},
			},
			"popularProducts": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return catalog.PopularProducts(p.Context, intArg(p, "limit"))
				},
			},
			"suggestedProducts": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID := stringArg(p, "userId")
					if userID == "" {
						if principal, ok := middleware.PrincipalFromCtx(p.Context); ok {
							userID = principal.UserID
						}
					}
					return catalog.SuggestedProducts(p.Context, userID)
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return categories.List(p.Context)
				},
			},
		},
	})

	return gql.NewSchema(query)
}

// productField resolves a product attribute from either a listing item or a
// product detail.
func productField(t graphql.Output, get func(models.Product) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			switch src := p.Source.(type) {
			case models.Product:
				return get(src), nil
			case *models.ProductDetail:
				return get(src.Product), nil
			}
			return nil, nil
		},
	}
}

func intArg(p graphql.ResolveParams, name string) int {
	n, _ := p.Args[name].(int)
	return n
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

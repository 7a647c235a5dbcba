package controllers

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"price": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(models.Product).Price.InexactFloat64(), nil
			},
		},
		"images": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"sizes":  &graphql.Field{Type: graphql.NewList(graphql.String)},
		"colors": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"rating": &graphql.Field{Type: graphql.Float},
		"inStock": &graphql.Field{
			Type: graphql.Boolean,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(models.Product).InStock, nil
			},
		},
	},
})

// CatalogQuery is the read-only GraphQL root over the catalog.
func CatalogQuery(catalog *services.CatalogService) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					category, _ := p.Args["category"].(string)
					return catalog.List(p.Context, category)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					product, err := catalog.Find(p.Context, id)
					if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidID) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return product, nil
				},
			},
			"search": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"q": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					q, _ := p.Args["q"].(string)
					return catalog.Search(p.Context, q)
				},
			},
		},
	})
}

// GraphQL builds the /graphql handler for the catalog.
func GraphQL(catalog *services.CatalogService) (http.HandlerFunc, error) {
	schema, err := gql.NewSchema(CatalogQuery(catalog))
	if err != nil {
		return nil, err
	}
	return gql.Handler(schema), nil
}

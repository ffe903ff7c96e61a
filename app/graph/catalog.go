// Package graph exposes the product catalog as a GraphQL query.
//
//	{ categories { name types { name attributes { name values { value } } } } }
package graph

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/uniformhub/app/services"
	gql "github.com/shashiranjanraj/uniformhub/pkg/graphql"
)

// CatalogSource yields the cached catalog tree.
type CatalogSource interface {
	Tree(ctx context.Context) ([]services.CategoryNode, error)
}

var valueType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AttributeValue",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"value": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var attributeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Attribute",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"required": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"values":   &graphql.Field{Type: graphql.NewList(valueType)},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductType",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"slug":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"attributes": &graphql.Field{Type: graphql.NewList(attributeType)},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"slug":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"types": &graphql.Field{Type: graphql.NewList(productType)},
	},
})

// NewCatalogSchema builds the schema: catalog (alias categories),
// category(slug) and productType(id).
func NewCatalogSchema(src CatalogSource) (graphql.Schema, error) {
	all := func(p graphql.ResolveParams) (any, error) {
		return src.Tree(p.Context)
	}
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"catalog":    &graphql.Field{Type: graphql.NewList(categoryType), Resolve: all},
			"categories": &graphql.Field{Type: graphql.NewList(categoryType), Resolve: all},
			"category": &graphql.Field{
				Type: categoryType,
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					tree, err := src.Tree(p.Context)
					if err != nil {
						return nil, err
					}
					slug, _ := p.Args["slug"].(string)
					for _, c := range tree {
						if c.Slug == slug {
							return c, nil
						}
					}
					return nil, nil
				},
			},
			"productType": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					tree, err := src.Tree(p.Context)
					if err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(int)
					for _, c := range tree {
						for _, t := range c.Types {
							if int(t.ID) == id {
								return t, nil
							}
						}
					}
					return nil, nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

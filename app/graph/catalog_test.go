package graph

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/uniformhub/app/services"
)

type fixedTree []services.CategoryNode

func (f fixedTree) Tree(context.Context) ([]services.CategoryNode, error) { return f, nil }

var tree = fixedTree{{
	ID: 1, Name: "Tops", Slug: "tops",
	Types: []services.TypeNode{{
		ID: 4, Name: "Blazer", Slug: "blazer",
		Attributes: []services.AttributeNode{{
			ID: 9, Name: "Size", Required: true,
			Values: []services.ValueNode{{ID: 20, Value: "Age 7-8"}},
		}},
	}},
}}

func run(t *testing.T, query string) *graphql.Result {
	t.Helper()
	schema, err := NewCatalogSchema(tree)
	require.NoError(t, err)
	res := graphql.Do(graphql.Params{Schema: schema, RequestString: query, Context: context.Background()})
	require.Empty(t, res.Errors)
	return res
}

func TestCategoriesNestsFourLevels(t *testing.T) {
	res := run(t, `{ categories { slug types { name attributes { name required values { value } } } } }`)
	data := res.Data.(map[string]any)
	cats := data["categories"].([]any)
	require.Len(t, cats, 1)
	top := cats[0].(map[string]any)
	assert.Equal(t, "tops", top["slug"])
	attr := top["types"].([]any)[0].(map[string]any)["attributes"].([]any)[0].(map[string]any)
	assert.Equal(t, true, attr["required"])
	assert.Equal(t, "Age 7-8", attr["values"].([]any)[0].(map[string]any)["value"])
}

func TestLookupsBySlugAndID(t *testing.T) {
	res := run(t, `{ category(slug:"tops") { id } productType(id:4) { slug } missing: category(slug:"shoes") { id } }`)
	data := res.Data.(map[string]any)
	assert.Equal(t, 1, data["category"].(map[string]any)["id"])
	assert.Equal(t, "blazer", data["productType"].(map[string]any)["slug"])
	assert.Nil(t, data["missing"])
}

func TestCatalogRootMatchesCategories(t *testing.T) {
	res := run(t, `{ catalog { name types { name attributes { name values { value } } } } }`)
	cats := res.Data.(map[string]any)["catalog"].([]any)
	require.Len(t, cats, 1)
	assert.Equal(t, "Tops", cats[0].(map[string]any)["name"])
}
